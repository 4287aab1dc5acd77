// internal/notifier/notifier.go
package notifier

import "errors"

var (
	ErrNoRecipient    = errors.New("company has no recipient address")
	ErrNothingEnabled = errors.New("no notification channel enabled")
)

// Channel names, also used as metrics labels.
const (
	ChannelSES     = "ses"
	ChannelWebhook = "webhook"
	ChannelAMQP    = "amqp"
)
