package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welldanyogia/mail-dispatch/internal/delivery"
	"github.com/welldanyogia/mail-dispatch/internal/parser"
	"github.com/welldanyogia/mail-dispatch/internal/provider"
)

// recordingDeliverer captures the built message and answers with status.
type recordingDeliverer struct {
	status delivery.Status
	panic  bool
	got    *parser.Message
}

func (d *recordingDeliverer) Deliver(_ context.Context, msg *parser.Message) delivery.Result {
	if d.panic {
		panic("deliverer exploded")
	}
	d.got = msg
	return delivery.Result{Message: *msg, Status: d.status}
}

func newRouter(d Deliverer) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(nil, d, nil))
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPing(t *testing.T) {
	h := NewHandler(nil, &recordingDeliverer{}, nil)
	h.now = func() time.Time {
		return time.Date(2024, 5, 1, 12, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	}

	rec := httptest.NewRecorder()
	h.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"time":"2024-05-01T05:30:00Z"}`, rec.Body.String())
}

func TestSendQueryString(t *testing.T) {
	d := &recordingDeliverer{status: delivery.StatusOK}
	q := url.Values{
		"from":    {"Jane <jane@x.com>"},
		"to":      {"bob@y.com, Carol <carol@z.com>"},
		"subject": {"Hi"},
		"content": {"Hello"},
	}

	rec := httptest.NewRecorder()
	newRouter(d).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/send?"+q.Encode(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, d.got)
	assert.Equal(t, &parser.Address{Name: "Jane", Email: "jane@x.com"}, d.got.From)
	assert.Equal(t, parser.AddressList{
		{Name: "bob@y.com", Email: "bob@y.com"},
		{Name: "Carol", Email: "carol@z.com"},
	}, d.got.To)
	assert.Nil(t, d.got.Cc)

	body := decodeBody(t, rec)
	assert.Equal(t, "200: OK", body["status"])
	email := body["email"].(map[string]any)
	assert.Equal(t, "Hi", email["subject"])
	assert.Nil(t, email["bcc"])
}

func TestSendFormBody(t *testing.T) {
	d := &recordingDeliverer{status: delivery.StatusBadRequest}
	form := url.Values{"from": {"Jane <jane@x.com>"}, "cc": {"a@x.com,"}}

	req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newRouter(d).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, d.got)
	assert.Len(t, d.got.Cc, 2)
	assert.Equal(t, "400: BAD REQUEST", decodeBody(t, rec)["status"])
}

func TestSendJSONBody(t *testing.T) {
	d := &recordingDeliverer{status: delivery.StatusOK}
	body := `{"from": 42, "to": ["x@y.com"], "subject": 7, "content": "", "bcc": "b@x.com"}`

	req := httptest.NewRequest(http.MethodPost, "/send?subject=ignored", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	newRouter(d).ServeHTTP(rec, req)

	require.NotNil(t, d.got)
	assert.Nil(t, d.got.From, "non-string from is absent")
	assert.Nil(t, d.got.To, "non-string list is absent")
	require.NotNil(t, d.got.Subject)
	assert.Equal(t, "7", *d.got.Subject)
	assert.Nil(t, d.got.Content)
	assert.Equal(t, parser.AddressList{{Name: "b@x.com", Email: "b@x.com"}}, d.got.Bcc)
}

func TestSendMalformedJSONStillAnswers(t *testing.T) {
	d := &recordingDeliverer{status: delivery.StatusBadRequest}

	req := httptest.NewRequest(http.MethodPost, "/send?from=jane@x.com", strings.NewReader(`{"from":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newRouter(d).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, d.got)
	assert.Equal(t, "jane@x.com", d.got.From.Email)
}

func TestSendRecoversPanic(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&recordingDeliverer{panic: true}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/send", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"email": {"from": null, "to": null, "cc": null, "bcc": null, "subject": null, "content": null},
		"status": "500: INTERNAL SERVER ERROR"
	}`, rec.Body.String())
}

func TestSendThroughOrchestrator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"success"}`))
	}))
	defer srv.Close()

	env := provider.MapEnv{provider.SendGridAPIUserEnv: "user", provider.SendGridAPIKeyEnv: "secret"}
	chain, err := provider.BuildChain(
		[]string{provider.NameMailgun, provider.NameSendGrid},
		env, srv.Client(), provider.Endpoints{Mailgun: srv.URL, SendGrid: srv.URL}, nil,
	)
	require.NoError(t, err)

	q := url.Values{"from": {"Jane <jane@x.com>"}, "to": {"bob@y.com"}, "subject": {"Hi"}, "content": {"Hello"}}
	rec := httptest.NewRecorder()
	newRouter(delivery.NewOrchestrator(chain)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send?"+q.Encode(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "200: OK", decodeBody(t, rec)["status"])
}
