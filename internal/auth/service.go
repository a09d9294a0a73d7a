package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/warblerhq/warbler-api/internal/user/entity"
	"github.com/warblerhq/warbler-api/internal/user/repo"
	"github.com/warblerhq/warbler-api/pkg/utilities"
)

var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrEmailTaken       = errors.New("email is already taken")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	// ErrInvalidCredentials is the single error for both unknown username and
	// wrong password, so responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const MinPasswordLength = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PasswordHasher defines the minimal hashing interface (abstract so we can
// swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// dummyHash is a valid bcrypt hash verified against when the username does
// not exist, so lookup misses cost the same as wrong passwords.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service orchestrates signup, login and session verification.
type Service struct {
	users  repo.Repository
	hasher PasswordHasher
	codec  *TokenCodec
	logger *zap.SugaredLogger
}

func NewService(users repo.Repository, hasher PasswordHasher, codec *TokenCodec, logger *zap.SugaredLogger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{users: users, hasher: hasher, codec: codec, logger: logger}
}

// Signup validates the new account, persists it and issues a session token.
// Validation order is fixed: email shape, username uniqueness, email
// uniqueness, password length. The token is only issued after the insert
// succeeds, so a failed write never leaves a session behind.
func (s *Service) Signup(ctx context.Context, username, fullName, email, password string) (*entity.Profile, string, error) {
	if !emailRe.MatchString(email) {
		return nil, "", ErrInvalidEmail
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", err
	}
	if len(password) < MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	u := &entity.User{
		ID:           utilities.NewUserID(),
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// lost a race with a concurrent signup
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return nil, "", ErrUsernameTaken
		}
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}
	token, err := s.codec.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	s.logger.Infow("user signed up", "user_id", u.ID, "username", u.Username)
	return u.Profile(nil, nil), token, nil
}

// Login verifies credentials and issues a fresh session token. An unknown
// username still performs a bcrypt verify so the two failure modes are not
// distinguishable by timing.
func (s *Service) Login(ctx context.Context, username, password string) (*entity.Profile, string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.hasher.Verify(dummyHash, password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.codec.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	profile, err := s.profileOf(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

// CurrentProfile re-fetches the stored profile for an authenticated caller.
func (s *Service) CurrentProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
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
