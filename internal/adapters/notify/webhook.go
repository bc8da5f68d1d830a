package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "warwatch/internal/platform/errors"
	"warwatch/internal/platform/logger"
)

const webhookTimeout = 10 * time.Second

// Webhook posts messages as JSON to a configured HTTP endpoint
type Webhook struct {
	url  string
	http *http.Client
	log  logger.Logger
}

// NewWebhook builds a webhook sink for the given URL
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:  url,
		http: &http.Client{Timeout: webhookTimeout},
		log:  *logger.Named("notify"),
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Deliver posts {"content": text} and treats any non-2xx as a delivery failure
func (w *Webhook) Deliver(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookPayload{Content: text})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "notify marshal failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "notify new request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "notify post failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.Unavailablef("notify webhook status %d", resp.StatusCode)
	}
	w.log.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("notify delivered")
	return nil
}
