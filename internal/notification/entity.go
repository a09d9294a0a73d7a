package notification

import "time"

// TypeFollow is currently the only notification type.
const TypeFollow = "follow"

// Notification records a single follow event for its recipient.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	FromID    string    `db:"from_id" json:"from"`
	ToID      string    `db:"to_id" json:"to"`
	Read      bool      `db:"is_read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
