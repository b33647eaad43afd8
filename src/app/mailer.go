package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type (
	// Mailer dispatches a single outbound notification mail.
	Mailer interface {
		Send(ctx context.Context, to, subject, html string) error
	}

	// SendGridMailer talks to the SendGrid v3 mail API.
	SendGridMailer struct {
		host   string
		apiKey string
		from   string
		client *http.Client
	}

	sendGridPayload struct {
		Personalizations []sendGridPersonalization `json:"personalizations"`
		From             sendGridAddress           `json:"from"`
		Subject          string                    `json:"subject"`
		Content          []sendGridContent         `json:"content"`
	}

	sendGridPersonalization struct {
		To []sendGridAddress `json:"to"`
	}

	sendGridAddress struct {
		Email string `json:"email"`
	}

	sendGridContent struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
)

func NewSendGridMailer(host, apiKey, from string, timeout time.Duration) *SendGridMailer {
	return &SendGridMailer{
		host:   host,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: timeout},
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(sendGridPayload{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: to}}}},
		From:             sendGridAddress{Email: m.from},
		Subject:          subject,
		Content:          []sendGridContent{{Type: "text/html", Value: html}},
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v3/mail/send", m.host), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		logrus.WithField("status", resp.StatusCode).Error("mail provider rejected message")
		return fmt.Errorf("mail provider responded with status %d", resp.StatusCode)
	}
	return nil
}
