package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/warblerhq/warbler-api/internal/user/entity"
)

const queryTimeout = 5 * time.Second

// PostgresRepository implements Repository over sqlx.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the users and follows tables if absent (idempotent).
// Prefer migrations in production.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  bio TEXT NOT NULL DEFAULT '',
  link TEXT NOT NULL DEFAULT '',
  profile_img TEXT NOT NULL DEFAULT '',
  cover_img TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS follows (
  follower_id TEXT NOT NULL REFERENCES users(id),
  followee_id TEXT NOT NULL REFERENCES users(id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (follower_id, followee_id)
);
CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// mapConstraintErr converts unique-violation errors (23505) into the
// corresponding sentinel based on the violated constraint.
func mapConstraintErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrDuplicateUsername
		case "users_email_key":
			return ErrDuplicateEmail
		case "follows_pkey":
			return ErrDuplicateFollow
		}
	}
	return err
}

func (r *PostgresRepository) Create(ctx context.Context, u *entity.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	const q = `INSERT INTO users (id, username, full_name, email, password_hash, bio, link, profile_img, cover_img, created_at, updated_at)
		VALUES (:id, :username, :full_name, :email, :password_hash, :bio, :link, :profile_img, :cover_img, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, u); err != nil {
		return fmt.Errorf("insert user: %w", mapConstraintErr(err))
	}
	return nil
}

const userColumns = `id, username, full_name, email, password_hash, bio, link, profile_img, cover_img, created_at, updated_at`

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + column + `=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return &u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) Update(ctx context.Context, u *entity.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	const q = `UPDATE users SET username=:username, full_name=:full_name, email=:email,
		password_hash=:password_hash, bio=:bio, link=:link, profile_img=:profile_img,
		cover_img=:cover_img, updated_at=:updated_at WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, q, u)
	if err != nil {
		return fmt.Errorf("update user: %w", mapConstraintErr(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Sample(ctx context.Context, excludeID string, n int) ([]*entity.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	q := `SELECT ` + userColumns + ` FROM users WHERE id != $1 ORDER BY random() LIMIT $2`
	users := []*entity.User{}
	if err := r.db.SelectContext(ctx, &users, q, excludeID, n); err != nil {
		return nil, fmt.Errorf("sample users: %w", err)
	}
	return users, nil
}

func (r *PostgresRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	ids := []string{}
	const q = `SELECT follower_id FROM follows WHERE followee_id=$1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	ids := []string{}
	const q = `SELECT followee_id FROM follows WHERE follower_id=$1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	var exists bool
	const q = `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id=$1 AND followee_id=$2)`
	if err := r.db.GetContext(ctx, &exists, q, followerID, followeeID); err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) AddFollow(ctx context.Context, followerID, followeeID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	const q = `INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, q, followerID, followeeID); err != nil {
		return fmt.Errorf("add follow: %w", mapConstraintErr(err))
	}
	return nil
}

func (r *PostgresRepository) RemoveFollow(ctx context.Context, followerID, followeeID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	const q = `DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2`
	if _, err := r.db.ExecContext(ctx, q, followerID, followeeID); err != nil {
		return fmt.Errorf("remove follow: %w", err)
	}
	return nil
}
