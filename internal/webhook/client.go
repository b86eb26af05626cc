// Package webhook delivers signed run notifications.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dunamismax/imgbox/internal/domain"
)

const (
	HeaderSignature = "X-Imgbox-Signature"
	HeaderTimestamp = "X-Imgbox-Timestamp"
	HeaderEvent     = "X-Imgbox-Event"

	EventRunSucceeded = "run.succeeded"
	EventRunFailed    = "run.failed"
)

// Event is the JSON body posted to a run's webhook URL.
type Event struct {
	RunID      string       `json:"run_id"`
	Status     string       `json:"status"`
	Input      string       `json:"input"`
	Outputs    []string     `json:"outputs,omitempty"`
	Error      string       `json:"error,omitempty"`
	Usage      domain.Usage `json:"usage"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Name maps the event's run status to its event header value.
func (e Event) Name() string {
	if e.Status == domain.RunStatusSucceeded {
		return EventRunSucceeded
	}
	return EventRunFailed
}

type Config struct {
	SigningSecret  string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type Client struct {
	httpClient     *http.Client
	signingSecret  string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	maxAttempts := max(cfg.MaxAttempts, 1)

	initialBackoff := cfg.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = 1 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		signingSecret:  cfg.SigningSecret,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		maxBackoff:     max(cfg.MaxBackoff, initialBackoff),
	}
}

// Send posts the event to endpoint, retrying transport errors, 429s and 5xx
// responses with doubling backoff. An empty endpoint is a no-op.
func (c *Client) Send(ctx context.Context, endpoint string, event Event) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	signature := Sign(c.signingSecret, timestamp, body)

	backoff := c.initialBackoff
	var lastErr error
	attempts := 0
	for attempts < c.maxAttempts {
		attempts++
		if err := ctx.Err(); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build webhook request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderTimestamp, timestamp)
		req.Header.Set(HeaderSignature, signature)
		req.Header.Set(HeaderEvent, event.Name())

		resp, err := c.httpClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
		}

		var retry bool
		lastErr, retry = classifyWebhookError(err, resp)
		if !retry || attempts == c.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, c.maxBackoff)
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", attempts, lastErr)
}

// Sign returns the signature header value for a timestamp and body.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a received signature in constant time.
func Verify(secret, timestamp string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, timestamp, body)), []byte(signature))
}

var errNoResponse = errors.New("webhook request failed: no response")

func classifyWebhookError(err error, resp *http.Response) (error, bool) {
	if err != nil {
		return err, true
	}
	if resp == nil {
		return errNoResponse, true
	}
	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return fmt.Errorf("webhook returned status=%d", resp.StatusCode), retry
}
