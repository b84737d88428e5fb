package provider

import "log/slog"

const formContentType = "application/x-www-form-urlencoded"

// Option customises an adapter at construction time.
type Option func(*options)

type options struct {
	baseURL string
	policy  MatchPolicy
	logger  *slog.Logger
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.baseURL = url
		}
	}
}

// WithMatchPolicy overrides how non-matching responses are classified.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(baseURL string, policy MatchPolicy, opts []Option) options {
	o := options{
		baseURL: baseURL,
		policy:  policy,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
