// Package provider implements the email provider adapters used by the
// delivery orchestrator. Each adapter encodes a parser.Message into its
// provider's wire payload, posts it, and classifies the raw response into a
// Code.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/welldanyogia/mail-dispatch/internal/parser"
)

// Code is the raw outcome reported by a provider adapter.
type Code int

// Codes understood by the delivery orchestrator. Any other value is left
// unmapped.
const (
	CodeOK            Code = http.StatusOK
	CodeBadRequest    Code = http.StatusBadRequest
	CodeInternalError Code = http.StatusInternalServerError
)

// String returns the numeric code as text, suitable for metric labels.
func (c Code) String() string {
	return strconv.Itoa(int(c))
}

var (
	// ErrMissingCredentials means a required provider credential is absent.
	ErrMissingCredentials = errors.New("provider: missing credentials")
	// ErrMissingMandatoryField means from, to, subject or content is absent.
	ErrMissingMandatoryField = errors.New("provider: missing mandatory field")
)

// Provider delivers a message through one email service.
//
// Classified outcomes are returned as a Code with a nil error. A non-nil error
// signals a failure the adapter could not classify.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *parser.Message) (Code, error)
}

// CredentialChecker reports whether a provider's credentials are present.
type CredentialChecker interface {
	Configured() bool
}

// Env is the read-only environment collaborator queried for credentials.
type Env interface {
	Lookup(key string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

// Lookup implements Env.
func (OSEnv) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is an Env backed by a map.
type MapEnv map[string]string

// Lookup implements Env.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// credentials returns the values of keys, failing with ErrMissingCredentials
// when any of them is unset or blank.
func credentials(env Env, keys ...string) ([]string, error) {
	values := make([]string, len(keys))
	var missing []string
	for i, key := range keys {
		v, ok := env.Lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
			continue
		}
		values[i] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return values, nil
}

// MatchPolicy decides how a response that is not the success marker is classified.
type MatchPolicy int

const (
	// MatchLenient classifies every non-matching response as CodeBadRequest.
	MatchLenient MatchPolicy = iota
	// MatchStrict classifies a well-formed but non-matching response as
	// CodeInternalError and an unparsable one as CodeBadRequest.
	MatchStrict
)

func (p MatchPolicy) String() string {
	if p == MatchStrict {
		return "strict"
	}
	return "lenient"
}

// classifyMarker compares the "message" field of a JSON response body with
// the provider's success marker.
func classifyMarker(body, marker string, policy MatchPolicy) Code {
	var resp map[string]any
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return CodeBadRequest
	}
	if msg, ok := resp["message"].(string); ok && msg == marker {
		return CodeOK
	}
	return mismatch(policy)
}

func mismatch(policy MatchPolicy) Code {
	if policy == MatchStrict {
		return CodeInternalError
	}
	return CodeBadRequest
}

// formatAddress renders an address as "Name <email>".
func formatAddress(a parser.Address) string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// formatAddressList joins formatted addresses with ", ".
func formatAddressList(list parser.AddressList) string {
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = formatAddress(a)
	}
	return strings.Join(parts, ", ")
}

func emails(list parser.AddressList) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Email
	}
	return out
}

func names(list parser.AddressList) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Name
	}
	return out
}
