package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-querystring/query"

	"github.com/welldanyogia/mail-dispatch/internal/parser"
)

// SendGrid environment keys and defaults.
const (
	SendGridAPIUserEnv = "SENDGRID_API_USER"
	SendGridAPIKeyEnv  = "SENDGRID_API_KEY"
	DefaultSendGridURL = "https://api.sendgrid.com/api/mail.send.json"

	// SendGridSuccessMessage is the "message" field of an accepted send.
	SendGridSuccessMessage = "success"
)

// sendgridPayload is the form body of the v2 mail.send endpoint. Address
// lists are sent as parallel repeated keys.
type sendgridPayload struct {
	APIUser  string   `url:"api_user"`
	APIKey   string   `url:"api_key"`
	Subject  string   `url:"subject"`
	Text     string   `url:"text"`
	From     string   `url:"from"`
	FromName string   `url:"fromname[]"`
	To       []string `url:"to,brackets"`
	ToName   []string `url:"toname,brackets"`
	Cc       []string `url:"cc,brackets,omitempty"`
	CcName   []string `url:"ccname,brackets,omitempty"`
	Bcc      []string `url:"bcc,brackets,omitempty"`
	BccName  []string `url:"bccname,brackets,omitempty"`
}

// SendGrid sends through the SendGrid v2 mail.send API.
type SendGrid struct {
	env       Env
	transport Transport
	url       string
	policy    MatchPolicy
	logger    *slog.Logger
}

// NewSendGrid creates a SendGrid adapter. The default policy is MatchLenient.
func NewSendGrid(env Env, transport Transport, opts ...Option) *SendGrid {
	o := applyOptions(DefaultSendGridURL, MatchLenient, opts)
	return &SendGrid{
		env:       env,
		transport: transport,
		url:       o.baseURL,
		policy:    o.policy,
		logger:    o.logger,
	}
}

// Name implements Provider.
func (s *SendGrid) Name() string { return NameSendGrid }

// Configured implements CredentialChecker.
func (s *SendGrid) Configured() bool {
	_, err := credentials(s.env, SendGridAPIUserEnv, SendGridAPIKeyEnv)
	return err == nil
}

// Send implements Provider.
func (s *SendGrid) Send(ctx context.Context, msg *parser.Message) (Code, error) {
	creds, err := credentials(s.env, SendGridAPIUserEnv, SendGridAPIKeyEnv)
	if err != nil {
		s.logger.Warn("sendgrid send skipped", "error", err)
		return CodeInternalError, nil
	}

	if !msg.HasMandatoryFields() {
		s.logger.Info("sendgrid send rejected", "error", ErrMissingMandatoryField)
		return CodeBadRequest, nil
	}

	body, err := s.encode(msg, creds[0], creds[1])
	if err != nil {
		return 0, fmt.Errorf("sendgrid: encode payload: %w", err)
	}

	resp, err := s.transport.Post(ctx, Request{
		URL:         s.url,
		ContentType: formContentType,
		Body:        body,
	})
	if err != nil {
		s.logger.Info("sendgrid transport failed", "error", err)
		return CodeBadRequest, nil
	}

	s.logger.Debug("sendgrid response", "body", resp)
	return classifyMarker(resp, SendGridSuccessMessage, s.policy), nil
}

func (s *SendGrid) encode(msg *parser.Message, apiUser, apiKey string) (string, error) {
	payload := sendgridPayload{
		APIUser:  apiUser,
		APIKey:   apiKey,
		Subject:  *msg.Subject,
		Text:     *msg.Content,
		From:     msg.From.Email,
		FromName: msg.From.Name,
		To:       emails(msg.To),
		ToName:   names(msg.To),
	}
	if msg.Cc != nil {
		payload.Cc = emails(msg.Cc)
		payload.CcName = names(msg.Cc)
	}
	if msg.Bcc != nil {
		payload.Bcc = emails(msg.Bcc)
		payload.BccName = names(msg.Bcc)
	}

	values, err := query.Values(payload)
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}
