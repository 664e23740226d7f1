package notifier

import "context"

// Notifier is the outbound message-delivery channel. Fire-and-forget: a nil
// error means the provider accepted the message, nothing more.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}
