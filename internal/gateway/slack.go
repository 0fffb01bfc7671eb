package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// Notifier defines the behavior of a gateway that posts a message to a
// chat channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// SlackGateway posts messages through an incoming webhook.
type SlackGateway struct {
	webhookURL string
	logger     *log.Logger
}

// NewSlackGateway creates a notifier for the given webhook URL.
func NewSlackGateway(webhookURL string, logger *log.Logger) *SlackGateway {
	return &SlackGateway{webhookURL: webhookURL, logger: logger}
}

// Notify posts text to the webhook's channel.
func (s *SlackGateway) Notify(ctx context.Context, text string) error {
	if err := slack.PostWebhookContext(ctx, s.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		return fmt.Errorf("failed to post webhook message: %w", err)
	}
	s.logger.Println("Posted message to webhook.")
	return nil
}
