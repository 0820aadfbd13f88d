package revokerepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RepoMemory keeps revoked token IDs in process memory.
type RepoMemory struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]time.Time
	now     func() time.Time
}

// NewRepoMemory returns an empty RepoMemory.
func NewRepoMemory() *RepoMemory {
	return &RepoMemory{
		revoked: make(map[uuid.UUID]time.Time),
		now:     time.Now,
	}
}

// Revoke marks the token as revoked until the given time.
func (r *RepoMemory) Revoke(ctx context.Context, id uuid.UUID, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	for k, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, k)
		}
	}

	if until.After(now) {
		r.revoked[id] = until
	}

	return nil
}

// IsRevoked reports whether the token was revoked and has not expired yet.
func (r *RepoMemory) IsRevoked(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[id]

	return ok && exp.After(r.now()), nil
}
