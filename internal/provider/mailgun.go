package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/welldanyogia/mail-dispatch/internal/parser"
)

// Mailgun environment keys and defaults.
const (
	MailgunAPIKeyEnv      = "MAILGUN_PRIVATE_KEY"
	MailgunDomainEnv      = "MAILGUN_DOMAIN"
	DefaultMailgunBaseURL = "https://api.mailgun.net/v3"

	// MailgunSuccessMessage is the "message" field of an accepted send.
	MailgunSuccessMessage = "Queued. Thank you."
)

// mailgunPayload is the form body of POST /v3/{domain}/messages.
type mailgunPayload struct {
	From    string `url:"from"`
	To      string `url:"to"`
	Cc      string `url:"cc,omitempty"`
	Bcc     string `url:"bcc,omitempty"`
	Subject string `url:"subject"`
	Text    string `url:"text"`
}

// Mailgun sends through the Mailgun v3 messages API.
type Mailgun struct {
	env       Env
	transport Transport
	baseURL   string
	policy    MatchPolicy
	logger    *slog.Logger
}

// NewMailgun creates a Mailgun adapter. The default policy is MatchStrict.
func NewMailgun(env Env, transport Transport, opts ...Option) *Mailgun {
	o := applyOptions(DefaultMailgunBaseURL, MatchStrict, opts)
	return &Mailgun{
		env:       env,
		transport: transport,
		baseURL:   strings.TrimRight(o.baseURL, "/"),
		policy:    o.policy,
		logger:    o.logger,
	}
}

// Name implements Provider.
func (m *Mailgun) Name() string { return NameMailgun }

// Configured implements CredentialChecker.
func (m *Mailgun) Configured() bool {
	_, err := credentials(m.env, MailgunAPIKeyEnv, MailgunDomainEnv)
	return err == nil
}

// Send implements Provider.
func (m *Mailgun) Send(ctx context.Context, msg *parser.Message) (Code, error) {
	creds, err := credentials(m.env, MailgunAPIKeyEnv, MailgunDomainEnv)
	if err != nil {
		m.logger.Warn("mailgun send skipped", "error", err)
		return CodeInternalError, nil
	}
	apiKey, domain := creds[0], creds[1]

	if !msg.HasMandatoryFields() {
		m.logger.Info("mailgun send rejected", "error", ErrMissingMandatoryField)
		return CodeBadRequest, nil
	}

	body, err := m.encode(msg, domain)
	if err != nil {
		return 0, fmt.Errorf("mailgun: encode payload: %w", err)
	}

	resp, err := m.transport.Post(ctx, Request{
		URL:         m.baseURL + "/" + domain + "/messages",
		ContentType: formContentType,
		Body:        body,
		Username:    "api",
		Password:    apiKey,
	})
	if err != nil {
		m.logger.Info("mailgun transport failed", "error", err)
		return CodeBadRequest, nil
	}

	m.logger.Debug("mailgun response", "body", resp)
	return classifyMarker(resp, MailgunSuccessMessage, m.policy), nil
}

// encode builds the form body. The sender is rewritten to the configured
// domain while keeping the requested display name.
func (m *Mailgun) encode(msg *parser.Message, domain string) (string, error) {
	payload := mailgunPayload{
		From:    formatAddress(parser.Address{Name: msg.From.Name, Email: "mailgun@" + domain}),
		To:      formatAddressList(msg.To),
		Subject: *msg.Subject,
		Text:    *msg.Content,
	}
	if msg.Cc != nil {
		payload.Cc = formatAddressList(msg.Cc)
	}
	if msg.Bcc != nil {
		payload.Bcc = formatAddressList(msg.Bcc)
	}

	values, err := query.Values(payload)
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}
