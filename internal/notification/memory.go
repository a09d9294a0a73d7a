package notification

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository used by tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []*Notification
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.items = append(r.items, &cp)
	return nil
}

func (r *MemoryRepository) ListByRecipient(_ context.Context, userID string) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Notification{}
	for _, n := range r.items {
		if n.ToID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ToID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteByRecipient(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, n := range r.items {
		if n.ToID != userID {
			kept = append(kept, n)
		}
	}
	r.items = kept
	return nil
}
