package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const mailjetSendURL = "https://api.mailjet.com/v3.1/send"

const (
	mailFromEmail = "noreply@example.com"
	mailFromName  = "False Positives/Negatives"
)

type mailjetAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	Subject  string           `json:"Subject"`
	TextPart string           `json:"TextPart"`
	HTMLPart string           `json:"HTMLPart"`
}

type mailjetSendRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

// MailjetMailer sends transactional verification mail through the
// Mailjet v3.1 send API using a basic-auth key pair.
type MailjetMailer struct {
	apiKey     string
	secretKey  string
	endpoint   string
	httpClient *http.Client
}

func NewMailjetMailer(apiKey, secretKey string) *MailjetMailer {
	return &MailjetMailer{
		apiKey:    apiKey,
		secretKey: secretKey,
		endpoint:  mailjetSendURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (m *MailjetMailer) SendVerificationCode(ctx context.Context, email, name, code string) error {
	payload := mailjetSendRequest{
		Messages: []mailjetMessage{{
			From:    mailjetAddress{Email: mailFromEmail, Name: mailFromName},
			To:      []mailjetAddress{{Email: email, Name: name}},
			Subject: "Verify your account",
			TextPart: fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\n\nPlease use this code to verify your account.",
				name, code),
			HTMLPart: fmt.Sprintf("<h3>Hello %s,</h3><p>Your verification code is: <strong>%s</strong></p><p>Please use this code to verify your account.</p>",
				name, code),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "json.Marshal mailjet payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "http.NewRequest POST mailjet send")
	}
	req.SetBasicAuth(m.apiKey, m.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "httpClient.Do")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("received status code %d from mailjet", resp.StatusCode)
	}
	return nil
}
