// Package webhook talks to the automation webhook: event notifications and
// WhatsApp QR code generation.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"campaign_builder/internal/domain"
)

const DefaultTimeout = 30 * time.Second

type payload struct {
	Action    string           `json:"action"`
	User      string           `json:"user"`
	Timestamp string           `json:"timestamp"`
	Data      any              `json:"data,omitempty"`
	Leads     []domain.Lead    `json:"leads,omitempty"`
	Messages  []domain.Message `json:"messages,omitempty"`
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	now        func() time.Time
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(timeout time.Duration, opts []Option) options {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	o := options{httpClient: &http.Client{Timeout: timeout}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Notifier posts events to the webhook. Delivery is best effort: failures are
// logged and never returned or retried.
type Notifier struct {
	url        string
	user       string
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

func NewNotifier(url, user string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Notifier {
	o := buildOptions(timeout, opts)
	return &Notifier{
		url:        url,
		user:       user,
		httpClient: o.httpClient,
		now:        o.now,
		logger:     logger.With("component", "webhook"),
	}
}

// Notify sends note. An empty note.User falls back to the configured user.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) {
	user := note.User
	if user == "" {
		user = n.user
	}

	body, err := json.Marshal(payload{
		Action:    note.Action,
		User:      user,
		Timestamp: n.now().UTC().Format(time.RFC3339Nano),
		Data:      note.Data,
		Leads:     note.Leads,
		Messages:  note.Messages,
	})
	if err != nil {
		n.logger.Error("failed to encode notification", "action", note.Action, "error", err)
		return
	}

	if err := n.post(ctx, body); err != nil {
		n.logger.Warn("webhook notification failed", "action", note.Action, "error", err)
		return
	}
	n.logger.Debug("webhook notified", "action", note.Action)
}

func (n *Notifier) post(ctx context.Context, body []byte) error {
	return postJSON(ctx, n.httpClient, n.url, body, nil)
}

// postJSON posts body and, when out is non-nil, decodes the response into it.
func postJSON(ctx context.Context, c *http.Client, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
