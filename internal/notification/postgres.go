package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const queryTimeout = 5 * time.Second

// PostgresRepository implements Repository over sqlx.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the notifications table if absent (idempotent).
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  from_id TEXT NOT NULL,
  to_id TEXT NOT NULL,
  is_read BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_to ON notifications(to_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

func (r *PostgresRepository) Create(ctx context.Context, n *Notification) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	const q = `INSERT INTO notifications (id, type, from_id, to_id, is_read, created_at)
		VALUES (:id, :type, :from_id, :to_id, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, userID string) ([]*Notification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	out := []*Notification{}
	const q = `SELECT id, type, from_id, to_id, is_read, created_at
		FROM notifications WHERE to_id=$1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	const q = `UPDATE notifications SET is_read=true WHERE to_id=$1 AND is_read=false`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByRecipient(ctx context.Context, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	const q = `DELETE FROM notifications WHERE to_id=$1`
	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}
