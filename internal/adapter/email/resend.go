// Package email implements domain.Notifier against the Resend HTTP API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/metrics"
	"github.com/ogmaths/clientpulse/internal/platform/retry"
)

const requestTimeout = 10 * time.Second

// Client sends transactional email through Resend. Transient failures and
// rate limiting are retried with backoff; 4xx responses are permanent.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	from       string
	policy     retry.Policy
}

var _ domain.Notifier = (*Client)(nil)

func NewClient(apiKey, baseURL, from string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiKey:     apiKey,
		baseURL:    baseURL,
		from:       from,
		policy: retry.Policy{
			MaxAttempts:      3,
			InitialBackoff:   500 * time.Millisecond,
			RateLimitBackoff: 2 * time.Second,
			OnRetry: func(attempt int, err error, backoff time.Duration) {
				slog.Warn("Retrying email delivery", "attempt", attempt, "backoff", backoff, "error", err)
			},
		},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// statusError carries the HTTP status so the retry classifier can
// distinguish rate limiting and server errors from permanent failures.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("email API returned %d: %s", e.status, e.body)
}

func classify(err error) retry.Action {
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.status == http.StatusTooManyRequests:
			return retry.After
		case se.status >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}
	// Network errors are transient.
	return retry.Retry
}

func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	err = retry.DoVoid(ctx, c.policy, classify, func() error {
		return c.post(ctx, payload)
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{status: resp.StatusCode, body: string(body)}
	}
	return nil
}

// NopNotifier logs instead of sending, for local development without an API key.
type NopNotifier struct{}

var _ domain.Notifier = NopNotifier{}

func (NopNotifier) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("Email delivery disabled, dropping notification", "to", to, "subject", subject)
	return nil
}
