package repo

import (
	"context"
	"errors"

	"github.com/warblerhq/warbler-api/internal/user/entity"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	// ErrDuplicateFollow is returned when the follow edge already exists.
	ErrDuplicateFollow = errors.New("follow edge already exists")
)

// Repository provides access to user records and the follows relation.
// Follower/following lists are derived from a single authoritative
// follows(follower_id, followee_id) edge table, so the two sides of a
// relationship can never drift apart.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// Sample returns up to n users drawn uniformly at random, excluding the
	// given user id.
	Sample(ctx context.Context, excludeID string, n int) ([]*entity.User, error)

	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	AddFollow(ctx context.Context, followerID, followeeID string) error
	RemoveFollow(ctx context.Context, followerID, followeeID string) error
}
