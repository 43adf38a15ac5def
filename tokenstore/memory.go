package tokenstore

import (
	"context"
	"sync"
)

// MemoryRepo keeps the snapshot in process memory.
type MemoryRepo struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

var _ Repo = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Clone(), nil
}

func (r *MemoryRepo) Save(ctx context.Context, snapshot Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot.Clone()
	return nil
}
