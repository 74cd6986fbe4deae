package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/foxseedlab/voicecap/internal/webhook"
)

const defaultInitialInterval = 500 * time.Millisecond

type HTTPSender struct {
	webhookURL      string
	maxAttempts     int
	initialInterval time.Duration
	client          *http.Client
}

func NewHTTPSender(webhookURL string, maxAttempts int) *HTTPSender {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &HTTPSender{
		webhookURL:      webhookURL,
		maxAttempts:     maxAttempts,
		initialInterval: defaultInitialInterval,
		client:          &http.Client{Timeout: 10 * time.Second},
	}
}

// SendCapture posts payload as JSON. Server errors and 429 are retried with
// exponential backoff; other 4xx responses fail immediately.
func (s *HTTPSender) SendCapture(ctx context.Context, payload webhook.CaptureWebhookPayload) error {
	if s.webhookURL == "" {
		return nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.maxAttempts-1)), ctx)

	return backoff.Retry(func() error {
		return s.post(ctx, b)
	}, retry)
}

func (s *HTTPSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if isHTTPSuccessStatus(resp.StatusCode) {
		return nil
	}
	statusErr := fmt.Errorf("webhook returned status %d", resp.StatusCode)
	if isRetryableStatus(resp.StatusCode) {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
