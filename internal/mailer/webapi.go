package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/project-tracker/internal/config"
)

// WebAPIMailer posts messages to an HTTP email provider endpoint.
type WebAPIMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

// NewWebAPIMailer constructs the transport.
func NewWebAPIMailer(cfg config.MailerConfig) *WebAPIMailer {
	return &WebAPIMailer{
		endpoint: cfg.WebAPIEndpoint,
		apiKey:   cfg.WebAPIKey,
		from:     cfg.From,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type webAPIRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send delivers the message via the provider API.
func (m *WebAPIMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(webAPIRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}
