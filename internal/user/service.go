package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler-api/internal/auth"
	"github.com/warblerhq/warbler-api/internal/notification"
	"github.com/warblerhq/warbler-api/internal/user/entity"
	"github.com/warblerhq/warbler-api/internal/user/repo"
	"github.com/warblerhq/warbler-api/pkg/utilities"
)

var (
	ErrSelfFollow = errors.New("you can't follow or unfollow yourself")
	// ErrPasswordPair is returned when only one of currentPassword and
	// newPassword is supplied on a profile update.
	ErrPasswordPair  = errors.New("both current and new passwords are required to change password")
	ErrWrongPassword = errors.New("current password is incorrect")
)

const (
	suggestionPoolSize = 10
	suggestionLimit    = 4
)

// Service implements the social-graph operations: profile lookup, partial
// profile update, follow/unfollow and the suggested-users sampler.
type Service struct {
	users         repo.Repository
	notifications notification.Repository
	hasher        auth.PasswordHasher
	logger        *zap.SugaredLogger
}

func NewService(users repo.Repository, notifications notification.Repository, hasher auth.PasswordHasher, logger *zap.SugaredLogger) *Service {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}
	return &Service{users: users, notifications: notifications, hasher: hasher, logger: logger}
}

// GetProfile returns the password-free profile for a username.
func (s *Service) GetProfile(ctx context.Context, username string) (*entity.Profile, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, u)
}

// FollowOrUnfollow toggles the follow edge from actor to target. It reports
// true when the call resulted in a follow and false on an unfollow. Exactly
// one notification is created per follow transition and none on unfollow.
func (s *Service) FollowOrUnfollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, err
	}
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return false, err
	}

	following, err := s.users.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if following {
		if err := s.users.RemoveFollow(ctx, actorID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.users.AddFollow(ctx, actorID, targetID); err != nil {
		// a concurrent request won the race; the edge exists, treat as followed
		if errors.Is(err, repo.ErrDuplicateFollow) {
			return true, nil
		}
		return false, err
	}
	n := &notification.Notification{
		ID:        utilities.NewNotificationID(),
		Type:      notification.TypeFollow,
		FromID:    actorID,
		ToID:      targetID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		// the follow stands; the notification is best-effort
		s.logger.Warnw("follow notification not created", "err", err, "from", actorID, "to", targetID)
	}
	return true, nil
}

// Suggest draws a random pool of users excluding the actor, drops anyone the
// actor already follows and returns at most four profiles. The result is
// re-sampled on every call and may hold fewer than four entries even when
// more eligible users exist; callers must not cache it.
func (s *Service) Suggest(ctx context.Context, actorID string) ([]*entity.Profile, error) {
	pool, err := s.users.Sample(ctx, actorID, suggestionPoolSize)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.users.FollowingIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	followed := make(map[string]struct{}, len(followingIDs))
	for _, id := range followingIDs {
		followed[id] = struct{}{}
	}

	suggestions := []*entity.Profile{}
	for _, u := range pool {
		if _, ok := followed[u.ID]; ok {
			continue
		}
		p, err := s.profileOf(ctx, u)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, p)
		if len(suggestions) == suggestionLimit {
			break
		}
	}
	return suggestions, nil
}

// UpdateRequest carries a partial profile update. Nil or empty fields keep
// their stored values.
type UpdateRequest struct {
	Username        *string `json:"username"`
	FullName        *string `json:"fullName"`
	Email           *string `json:"email"`
	Bio             *string `json:"bio"`
	Link            *string `json:"link"`
	ProfileImg      *string `json:"profileImg"`
	CoverImg        *string `json:"coverImg"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

// UpdateProfile applies a partial update to the actor's own record. Changing
// the password requires both currentPassword and newPassword; the current
// one must verify against the stored hash and the new one obeys the signup
// length rule.
func (s *Service) UpdateProfile(ctx context.Context, actorID string, req *UpdateRequest) (*entity.Profile, error) {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	current := stringValue(req.CurrentPassword)
	newPw := stringValue(req.NewPassword)
	if (current == "") != (newPw == "") {
		return nil, ErrPasswordPair
	}
	if current != "" {
		if !s.hasher.Verify(u.PasswordHash, current) {
			return nil, ErrWrongPassword
		}
		if len(newPw) < auth.MinPasswordLength {
			return nil, auth.ErrPasswordTooShort
		}
		hash, err := s.hasher.Hash(newPw)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	applyIfSet(&u.Username, req.Username)
	applyIfSet(&u.FullName, req.FullName)
	applyIfSet(&u.Email, req.Email)
	applyIfSet(&u.Bio, req.Bio)
	applyIfSet(&u.Link, req.Link)
	applyIfSet(&u.ProfileImg, req.ProfileImg)
	applyIfSet(&u.CoverImg, req.CoverImg)
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return nil, auth.ErrUsernameTaken
		}
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, auth.ErrEmailTaken
		}
		return nil, err
	}
	return s.profileOf(ctx, u)
}

func (s *Service) profileOf(ctx context.Context, u *entity.User) (*entity.Profile, error) {
	followers, err := s.users.FollowerIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.users.FollowingIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return u.Profile(followers, following), nil
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// applyIfSet overwrites dst only when the field was supplied and non-empty,
// mirroring the partial-update semantics of profile edits.
func applyIfSet(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}
