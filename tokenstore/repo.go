package tokenstore

import "context"

// Repo persists the store's snapshot. Save must replace the previous snapshot
// atomically: a concurrent or interrupted Load sees either the old or the new one.
type Repo interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
