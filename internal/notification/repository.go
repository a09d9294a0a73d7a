package notification

import "context"

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListByRecipient returns the recipient's notifications newest-first.
	ListByRecipient(ctx context.Context, userID string) ([]*Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	DeleteByRecipient(ctx context.Context, userID string) error
}
