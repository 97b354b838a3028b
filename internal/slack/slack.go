// Package slack delivers payloads to a Slack incoming webhook. The webhook
// URL is pre-supplied configuration; there is no other auth.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deusflow/trends/internal/logger"
)

// Payload is the incoming-webhook message body. Text doubles as the
// notification fallback when Blocks are present.
type Payload struct {
	Text   string  `json:"text,omitempty"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Block is the subset of Block Kit this job emits: header, section and
// context blocks.
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

// Text is a Block Kit text object.
type Text struct {
	Type  string `json:"type"` // "plain_text" or "mrkdwn"
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// DeliveryError reports a webhook response outside the 2xx range, or a
// failed request. This is the one failure the scheduler must see.
type DeliveryError struct {
	Status int
	Body   string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("slack delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("slack delivery failed: status %d: %s", e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Client posts to one webhook URL.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient builds a client with a per-request timeout.
func NewClient(webhookURL string, timeout time.Duration) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts the payload once. No retries: the hosting scheduler owns the
// cadence and a duplicate message is worse than a late one.
func (c *Client) Send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Slack puts the reason ("invalid_blocks" etc.) in a short body.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &DeliveryError{Status: resp.StatusCode, Body: string(snippet)}
	}

	logger.Debug("payload delivered", "blocks", len(payload.Blocks))
	return nil
}
