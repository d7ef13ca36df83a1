package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"fpndb/internal/model"
)

const sequencePreviewLen = 50

// SlackNotifier posts a submission summary to an incoming webhook with
// an action button linking back to the approval endpoint.
type SlackNotifier struct {
	webhookURL string
	baseURL    string
	httpClient *http.Client
}

func NewSlackNotifier(webhookURL, baseURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAction struct {
	Type string `json:"type"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

type slackAttachment struct {
	Color   string        `json:"color"`
	Fields  []slackField  `json:"fields"`
	Actions []slackAction `json:"actions"`
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

func (n *SlackNotifier) NotifySubmission(ctx context.Context, rec model.Record) error {
	msg := slackMessage{
		Text: "New record submitted for approval",
		Attachments: []slackAttachment{{
			Color: "warning",
			Fields: []slackField{
				{Title: "Algorithm", Value: rec.Algorithm, Short: true},
				{Title: "Type", Value: string(rec.ResultType), Short: true},
				{Title: "Sequence", Value: sequencePreview(rec.Sequence), Short: false},
				{Title: "Submitter", Value: rec.Submitter, Short: true},
			},
			Actions: []slackAction{{
				Type: "button",
				Text: "Approve",
				URL:  n.baseURL + "/approve/" + rec.ID,
			}},
		}},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "json.Marshal slack payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "http.NewRequest POST slack webhook")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "httpClient.Do")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("received status code %d from slack webhook", resp.StatusCode)
	}
	return nil
}

func sequencePreview(seq string) string {
	if len(seq) <= sequencePreviewLen {
		return seq
	}
	return seq[:sequencePreviewLen] + "..."
}
