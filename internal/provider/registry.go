package provider

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Provider names accepted in configuration.
const (
	NameMailgun  = "mailgun"
	NameSendGrid = "sendgrid"
	NameResend   = "resend"
)

// Endpoints holds the base URLs of every supported provider.
type Endpoints struct {
	Mailgun  string
	SendGrid string
	Resend   string
}

// BuildChain creates adapters for names in order. The first adapter is the
// primary and classifies mismatched responses with MatchStrict; fallbacks use
// MatchLenient.
func BuildChain(names []string, env Env, httpClient *http.Client, endpoints Endpoints, logger *slog.Logger) ([]Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	transport := NewHTTPTransport(httpClient)

	chain := make([]Provider, 0, len(names))
	for i, name := range names {
		policy := MatchLenient
		if i == 0 {
			policy = MatchStrict
		}
		l := logger.With("provider", name, "match_policy", policy.String())

		switch name {
		case NameMailgun:
			chain = append(chain, NewMailgun(env, transport,
				WithBaseURL(endpoints.Mailgun), WithMatchPolicy(policy), WithLogger(l)))
		case NameSendGrid:
			chain = append(chain, NewSendGrid(env, transport,
				WithBaseURL(endpoints.SendGrid), WithMatchPolicy(policy), WithLogger(l)))
		case NameResend:
			chain = append(chain, NewResend(env, httpClient,
				WithBaseURL(endpoints.Resend), WithMatchPolicy(policy), WithLogger(l)))
		default:
			return nil, fmt.Errorf("provider: unknown provider %q", name)
		}
	}
	return chain, nil
}
