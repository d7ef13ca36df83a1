package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"fpndb/internal/model"
)

// SheetyLogger appends each submitted record to an external
// spreadsheet through the Sheety REST API (bearer token).
type SheetyLogger struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewSheetyLogger(url, token string) *SheetyLogger {
	return &SheetyLogger{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sheetyAppendRequest struct {
	Record model.Record `json:"record"`
}

func (l *SheetyLogger) AppendRecord(ctx context.Context, rec model.Record) error {
	body, err := json.Marshal(sheetyAppendRequest{Record: rec})
	if err != nil {
		return errors.Wrap(err, "json.Marshal sheety payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "http.NewRequest POST sheety")
	}
	req.Header.Set("Authorization", "Bearer "+l.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "httpClient.Do")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("received status code %d from sheety", resp.StatusCode)
	}
	return nil
}
