// Package delivery sends a built message through an ordered chain of
// providers, falling back on any non-success outcome, and reduces the final
// provider code to a canonical status.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/welldanyogia/mail-dispatch/internal/logger"
	"github.com/welldanyogia/mail-dispatch/internal/metrics"
	"github.com/welldanyogia/mail-dispatch/internal/parser"
	"github.com/welldanyogia/mail-dispatch/internal/provider"
)

// Result is the outcome of one delivery. It is created once per request and
// not modified afterwards.
type Result struct {
	Message parser.Message `json:"email"`
	Status  Status         `json:"status"`
}

// Orchestrator tries providers strictly in order and stops at the first
// success.
type Orchestrator struct {
	providers []provider.Provider
	logger    *slog.Logger
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator creates an Orchestrator over providers. The first provider
// is the primary; the rest are fallbacks.
func NewOrchestrator(providers []provider.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		providers: providers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the configured chain in order.
func (o *Orchestrator) Providers() []provider.Provider {
	return o.providers
}

// Deliver sends msg and returns its canonical result. It never panics and
// never returns an error: every adapter failure becomes a status.
func (o *Orchestrator) Deliver(ctx context.Context, msg *parser.Message) Result {
	if msg == nil {
		metrics.DeliveriesTotal.WithLabelValues(StatusUndefined.String()).Inc()
		return Result{Status: StatusUndefined}
	}

	log := logger.WithCorrelationID(ctx, o.logger).With("delivery_id", uuid.NewString())

	var (
		code     provider.Code
		answered string
	)
	for i, p := range o.providers {
		if i > 0 {
			metrics.FallbacksTotal.Inc()
			log.Info("falling back to next provider",
				"provider", p.Name(),
				"previous_code", code.String(),
			)
		}

		code = o.attempt(ctx, log, p, msg)
		answered = p.Name()
		if code == provider.CodeOK {
			break
		}
	}

	status := FromCode(code)
	metrics.DeliveriesTotal.WithLabelValues(status.String()).Inc()
	log.Info("delivery completed",
		"provider", answered,
		"code", code.String(),
		"status", status.String(),
	)

	return Result{Message: *msg, Status: status}
}

// attempt runs a single provider send. Errors and panics from the adapter
// become CodeInternalError.
func (o *Orchestrator) attempt(ctx context.Context, log *slog.Logger, p provider.Provider, msg *parser.Message) (code provider.Code) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("provider panicked", "provider", p.Name(), "panic", fmt.Sprint(r))
			code = provider.CodeInternalError
		}
		elapsed := time.Since(start)
		metrics.ObserveAttempt(p.Name(), code.String(), elapsed)
		log.Debug("provider attempt", "provider", p.Name(), "code", code.String(), "duration", elapsed)
	}()

	code, err := p.Send(ctx, msg)
	if err != nil {
		log.Error("provider send failed", "provider", p.Name(), "error", err)
		return provider.CodeInternalError
	}
	return code
}
