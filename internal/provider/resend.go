package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/resend/resend-go/v2"

	"github.com/welldanyogia/mail-dispatch/internal/parser"
)

// Resend environment keys and defaults.
const (
	ResendAPIKeyEnv      = "RESEND_API_KEY"
	ResendDomainEnv      = "RESEND_DOMAIN"
	DefaultResendBaseURL = "https://api.resend.com/"
)

// Resend sends through the Resend API using its SDK. An SDK error takes the
// transport failure path; an accepted send carries a message id.
type Resend struct {
	env        Env
	httpClient *http.Client
	baseURL    string
	policy     MatchPolicy
	logger     *slog.Logger
}

// NewResend creates a Resend adapter. A nil client gets DefaultTimeout.
func NewResend(env Env, httpClient *http.Client, opts ...Option) *Resend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	o := applyOptions(DefaultResendBaseURL, MatchLenient, opts)
	return &Resend{
		env:        env,
		httpClient: httpClient,
		baseURL:    o.baseURL,
		policy:     o.policy,
		logger:     o.logger,
	}
}

// Name implements Provider.
func (r *Resend) Name() string { return NameResend }

// Configured implements CredentialChecker.
func (r *Resend) Configured() bool {
	_, err := credentials(r.env, ResendAPIKeyEnv, ResendDomainEnv)
	return err == nil
}

// Send implements Provider.
func (r *Resend) Send(ctx context.Context, msg *parser.Message) (Code, error) {
	creds, err := credentials(r.env, ResendAPIKeyEnv, ResendDomainEnv)
	if err != nil {
		r.logger.Warn("resend send skipped", "error", err)
		return CodeInternalError, nil
	}
	apiKey, domain := creds[0], creds[1]

	if !msg.HasMandatoryFields() {
		r.logger.Info("resend send rejected", "error", ErrMissingMandatoryField)
		return CodeBadRequest, nil
	}

	client, err := r.client(apiKey)
	if err != nil {
		return 0, err
	}

	params := &resend.SendEmailRequest{
		From:    formatAddress(parser.Address{Name: msg.From.Name, Email: "noreply@" + domain}),
		To:      emails(msg.To),
		Subject: *msg.Subject,
		Text:    *msg.Content,
	}
	if msg.Cc != nil {
		params.Cc = emails(msg.Cc)
	}
	if msg.Bcc != nil {
		params.Bcc = emails(msg.Bcc)
	}

	sent, err := client.Emails.SendWithContext(ctx, params)
	if err != nil {
		r.logger.Info("resend transport failed", "error", err)
		return CodeBadRequest, nil
	}
	if sent == nil || sent.Id == "" {
		return mismatch(r.policy), nil
	}

	r.logger.Debug("resend response", "message_id", sent.Id)
	return CodeOK, nil
}

func (r *Resend) client(apiKey string) (*resend.Client, error) {
	base, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, err
	}
	client := resend.NewCustomClient(r.httpClient, apiKey)
	client.BaseURL = base
	return client, nil
}
