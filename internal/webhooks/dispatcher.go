package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the request body.
	SignatureHeader = "X-Semprebella-Signature"
	// EventHeader carries the domain event type being delivered.
	EventHeader = "X-Semprebella-Event"

	defaultMaxAttempts    = 5
	defaultInitialBackoff = 500 * time.Millisecond
	maxBackoff            = 30 * time.Second
)

// Dispatcher delivers signed order event payloads to the configured
// webhook endpoint. Server errors and transport failures are retried
// with exponential backoff; a 4xx response means the receiver rejected
// the payload and retrying would not help.
type Dispatcher struct {
	cfg         config.WebhookConfig
	client      *http.Client
	logg        *logger.Logger
	maxAttempts uint64
	backoff     time.Duration
}

// NewDispatcher constructs a webhook dispatcher.
func NewDispatcher(cfg config.WebhookConfig, logg *logger.Logger) (*Dispatcher, error) {
	if strings.TrimSpace(cfg.OrderURL) == "" {
		return nil, fmt.Errorf("webhook order url required")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("webhook secret required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		cfg:         cfg,
		client:      &http.Client{Timeout: timeout},
		logg:        logg,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultInitialBackoff,
	}, nil
}

// Deliver posts the payload to the order webhook, retrying transient
// failures. The caller decides what to do when every attempt fails; for
// the pubsub worker that means a nack and broker-side redelivery.
func (d *Dispatcher) Deliver(ctx context.Context, eventType string, payload []byte) error {
	backoff := retry.WithCappedDuration(maxBackoff, retry.NewExponential(d.backoff))
	backoff = retry.WithMaxRetries(d.maxAttempts-1, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := d.post(ctx, eventType, payload); err != nil {
			if isRetryable(err) {
				logCtx := d.logg.WithFields(ctx, map[string]any{
					"event_type": eventType,
					"attempt":    attempt,
					"error":      err.Error(),
				})
				d.logg.Warn(logCtx, "webhook delivery failed, will retry")
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("webhook delivery: %w", err)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 of the payload with the shared secret.
func (d *Dispatcher) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(d.cfg.Secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (d *Dispatcher) post(ctx context.Context, eventType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.OrderURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, d.Sign(payload))
	req.Header.Set(EventHeader, eventType)

	resp, err := d.client.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &statusError{status: resp.StatusCode}
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook endpoint returned %d", e.status)
}

func isRetryable(err error) bool {
	if se, ok := err.(*statusError); ok {
		return se.status >= 500 || se.status == http.StatusTooManyRequests
	}
	if _, ok := err.(*transportError); ok {
		return true
	}
	return false
}
