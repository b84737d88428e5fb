package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportPost(t *testing.T) {
	var gotBody, gotType, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		gotUser, gotPass, _ = r.BasicAuth()
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.Client())
	body, err := tr.Post(context.Background(), Request{
		URL:         srv.URL,
		ContentType: formContentType,
		Body:        "a=1",
		Username:    "api",
		Password:    "key",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"message":"ok"}`, body)
	assert.Equal(t, "a=1", gotBody)
	assert.Equal(t, formContentType, gotType)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "key", gotPass)
}

func TestHTTPTransportNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"'to' parameter is missing"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(srv.Client()).Post(context.Background(), Request{URL: srv.URL})

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
	assert.Contains(t, terr.Body, "missing")
}

func TestHTTPTransportTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport(srv.Client()).Post(ctx, Request{URL: srv.URL})

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Zero(t, terr.StatusCode)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestMailgunOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mg.example.com/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"<1@mg>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	m := NewMailgun(mailgunEnv(), NewHTTPTransport(srv.Client()), WithBaseURL(srv.URL+"/v3"))
	code, err := m.Send(context.Background(), fullMessage())
	require.NoError(t, err)
	assert.Equal(t, CodeOK, code)
}
