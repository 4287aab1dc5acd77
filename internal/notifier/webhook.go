// internal/notifier/webhook.go
package notifier

import (
	"context"
	"fmt"

	commonhttp "renovation-matching/internal/common/http"
	"renovation-matching/internal/models"
)

// WebhookNotifier posts the notify request as JSON to a hosted notification
// function.
type WebhookNotifier struct {
	url    string
	apiKey string
	client *commonhttp.Client
}

func NewWebhookNotifier(url, apiKey string, client *commonhttp.Client) *WebhookNotifier {
	return &WebhookNotifier{url: url, apiKey: apiKey, client: client}
}

func (n *WebhookNotifier) Channel() string { return ChannelWebhook }

func (n *WebhookNotifier) Notify(ctx context.Context, req models.NotifyRequest) error {
	headers := map[string]string{}
	if n.apiKey != "" {
		headers["Authorization"] = "Bearer " + n.apiKey
	}
	if err := n.client.PostJSON(ctx, n.url, headers, req); err != nil {
		return fmt.Errorf("notify %s via webhook: %w", req.CompanyID, err)
	}
	return nil
}
