package repo

import (
	"context"
	"math/rand"
	"sync"

	"github.com/warblerhq/warbler-api/internal/user/entity"
)

// MemoryRepository is an in-memory Repository used by tests and local runs
// without a database.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]*entity.User // keyed by id
	follows map[[2]string]struct{}  // {follower, followee}
	order   []string                // insertion order of user ids, for stable sampling
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   make(map[string]*entity.User),
		follows: make(map[[2]string]struct{}),
	}
}

func (r *MemoryRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	r.order = append(r.order, u.ID)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryRepository) Sample(_ context.Context, excludeID string, n int) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	candidates := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if id != excludeID {
			candidates = append(candidates, id)
		}
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]*entity.User, 0, len(candidates))
	for _, id := range candidates {
		cp := *r.users[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) FollowerIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := []string{}
	for edge := range r.follows {
		if edge[1] == userID {
			ids = append(ids, edge[0])
		}
	}
	return ids, nil
}

func (r *MemoryRepository) FollowingIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := []string{}
	for edge := range r.follows {
		if edge[0] == userID {
			ids = append(ids, edge[1])
		}
	}
	return ids, nil
}

func (r *MemoryRepository) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.follows[[2]string{followerID, followeeID}]
	return ok, nil
}

func (r *MemoryRepository) AddFollow(_ context.Context, followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{followerID, followeeID}
	if _, ok := r.follows[key]; ok {
		return ErrDuplicateFollow
	}
	r.follows[key] = struct{}{}
	return nil
}

func (r *MemoryRepository) RemoveFollow(_ context.Context, followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.follows, [2]string{followerID, followeeID})
	return nil
}
