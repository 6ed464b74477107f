package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

// WebhookNotifier POSTs run events as JSON to a webhook URL.
type WebhookNotifier struct {
	id      string
	url     string
	client  *http.Client
	headers map[string]string
}

// NewWebhookNotifier creates a webhook notifier for the given URL.
func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		headers: make(map[string]string),
	}
}

// SetHeader sets a custom header included in webhook requests.
func (n *WebhookNotifier) SetHeader(key, value string) {
	n.headers[key] = value
}

// ID returns the notifier ID.
func (n *WebhookNotifier) ID() string { return n.id }

// Type returns "webhook".
func (n *WebhookNotifier) Type() string { return "webhook" }

// Notify sends the event to the webhook URL.
func (n *WebhookNotifier) Notify(ctx context.Context, event rxn.Event) error {
	payload, err := event.JSON()
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range n.headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close closes the notifier (no-op for webhook).
func (n *WebhookNotifier) Close() error { return nil }
