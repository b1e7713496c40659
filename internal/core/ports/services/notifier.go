package services

import "context"

// Notifier publishes customer-facing events (SMS/email fan-out happens
// downstream). Fire-and-forget: implementations log failures and never
// return them, so a committed posting can never be failed by a notification.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]any)
}
