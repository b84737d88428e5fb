// Package api exposes the HTTP surface of the dispatch service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/welldanyogia/mail-dispatch/internal/delivery"
	"github.com/welldanyogia/mail-dispatch/internal/logger"
	"github.com/welldanyogia/mail-dispatch/internal/parser"
)

// maxBodyBytes limits /send request bodies.
const maxBodyBytes = 1 << 20

// Deliverer sends a built message and reports its canonical result.
type Deliverer interface {
	Deliver(ctx context.Context, msg *parser.Message) delivery.Result
}

// PingResponse is the body of GET /ping.
type PingResponse struct {
	Time string `json:"time"`
}

// Handler handles the /ping and /send endpoints.
type Handler struct {
	builder   *parser.MessageBuilder
	deliverer Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler creates a new Handler instance
func NewHandler(builder *parser.MessageBuilder, deliverer Deliverer, log *slog.Logger) *Handler {
	if builder == nil {
		builder = parser.NewMessageBuilder(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		builder:   builder,
		deliverer: deliverer,
		logger:    log,
		now:       time.Now,
	}
}

// Ping handles GET /ping
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, PingResponse{Time: h.now().UTC().Format(time.RFC3339)})
}

// Send handles GET and POST /send. The HTTP status is always 200; the
// delivery outcome is reported in the body.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCorrelationID(r.Context(), h.logger)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("send handler panicked", "panic", fmt.Sprint(rec))
			h.writeJSON(w, delivery.Result{Status: delivery.StatusInternalError})
		}
	}()

	fields, err := h.readFields(w, r)
	if err != nil {
		log.Warn("could not read request fields", "error", err)
	}

	msg := h.builder.BuildFromFields(fields)
	h.writeJSON(w, h.deliverer.Deliver(r.Context(), msg))
}

// readFields collects the raw message fields. Query and form values are
// strings; a JSON object body may carry any JSON type and overrides them.
// Unreadable bodies contribute no fields.
func (h *Handler) readFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	fields := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return fields, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return fields, decodeJSONFields(r.Body, fields)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return fields, err
		}
	default:
		if err := r.ParseForm(); err != nil {
			return fields, err
		}
	}
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}

func decodeJSONFields(body io.Reader, fields map[string]any) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	for key, value := range payload {
		fields[key] = value
	}
	return nil
}

// writeJSON writes a 200 JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
