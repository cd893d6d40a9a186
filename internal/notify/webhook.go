package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// webhookClient is the shared HTTP plumbing for JSON-posting senders.
type webhookClient struct {
	client *http.Client
}

func newWebhookClient(timeout time.Duration) *webhookClient {
	return &webhookClient{client: &http.Client{Timeout: timeout}}
}

// postJSON marshals payload and POSTs it to url. Any non-2xx response is an
// error carrying up to 1KB of the response body. name prefixes errors so the
// failing channel is identifiable in logs.
func (w *webhookClient) postJSON(ctx context.Context, name, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s: unexpected status %d: %s", name, resp.StatusCode, string(respBody))
	}
	return nil
}
