package tokenstore

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/jrsteele09/sgo-connect/profiles"
	"github.com/rs/zerolog/log"
)

// Store holds the token records and the current selection. Every mutation loads
// the snapshot, derives the next one and saves it as a single step; callers only
// ever receive copies.
type Store struct {
	mu   sync.Mutex
	repo Repo
}

func New(repo Repo) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("[tokenstore New] repo is required")
	}
	return &Store{repo: repo}, nil
}

// mutate runs fn against a private copy of the snapshot. Nothing is saved when fn
// reports no change and the selection did not need repairing.
func (s *Store) mutate(ctx context.Context, op string, fn func(*Snapshot) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Load(ctx)
	if err != nil {
		return apperrors.Wrapf(err, "[%s] load", op)
	}
	next := current.Clone()
	changed := fn(&next)
	if next.normalize() {
		log.Debug().Str("op", op).Msg("Cleared dangling token selection")
		changed = true
	}
	if !changed {
		return nil
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return apperrors.Wrapf(err, "[%s] save", op)
	}
	return nil
}

// AddToken appends record. The selection is left unchanged.
func (s *Store) AddToken(ctx context.Context, record TokenRecord) error {
	return s.mutate(ctx, "AddToken", func(snap *Snapshot) bool {
		snap.Tokens = append(snap.Tokens, record.Clone())
		return true
	})
}

// AddAndSelect appends record and selects it, together with userID when that names
// one of the record's profiles, in a single save. A failed save leaves no trace of
// the record.
func (s *Store) AddAndSelect(ctx context.Context, record TokenRecord, userID *int) error {
	return s.mutate(ctx, "AddAndSelect", func(snap *Snapshot) bool {
		snap.Tokens = append(snap.Tokens, record.Clone())
		snap.Selection = Selection{SelectedTokenID: utils.Ptr(record.ID)}
		if userID != nil && profiles.Contains(record.Users, *userID) {
			snap.Selection.SelectedUserID = utils.ClonePtr(userID)
		}
		return true
	})
}

// SelectToken makes id the selected record. Unknown ids are ignored.
func (s *Store) SelectToken(ctx context.Context, id string) error {
	return s.mutate(ctx, "SelectToken", func(snap *Snapshot) bool {
		if snap.indexOf(id) < 0 {
			return false
		}
		if utils.Equal(snap.Selection.SelectedTokenID, &id) {
			return false
		}
		snap.Selection.SelectedTokenID = utils.Ptr(id)
		return true
	})
}

// SelectUser makes userID the active profile of the selected record. It is ignored
// when there is no selected record or the record has no such profile.
func (s *Store) SelectUser(ctx context.Context, userID int) error {
	return s.mutate(ctx, "SelectUser", func(snap *Snapshot) bool {
		record, ok := snap.Selected()
		if !ok || !profiles.Contains(record.Users, userID) {
			return false
		}
		if utils.Equal(snap.Selection.SelectedUserID, &userID) {
			return false
		}
		snap.Selection.SelectedUserID = utils.Ptr(userID)
		return true
	})
}

// UpdateUsers replaces the profiles attached to tokenID.
func (s *Store) UpdateUsers(ctx context.Context, tokenID string, users []profiles.UserProfile) error {
	return s.mutate(ctx, "UpdateUsers", func(snap *Snapshot) bool {
		i := snap.indexOf(tokenID)
		if i < 0 {
			return false
		}
		snap.Tokens[i].Users = profiles.CloneAll(users)
		return true
	})
}

// ReplaceToken swaps the stored record with the same id for record.
func (s *Store) ReplaceToken(ctx context.Context, record TokenRecord) error {
	return s.mutate(ctx, "ReplaceToken", func(snap *Snapshot) bool {
		i := snap.indexOf(record.ID)
		if i < 0 {
			return false
		}
		snap.Tokens[i] = record.Clone()
		return true
	})
}

// ClearAll removes every record and the selection.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.mutate(ctx, "ClearAll", func(snap *Snapshot) bool {
		*snap = Snapshot{}
		return true
	})
}

// GetSelected returns a copy of the selected record.
func (s *Store) GetSelected(ctx context.Context) (TokenRecord, bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return TokenRecord{}, false, err
	}
	record, ok := snap.Selected()
	return record, ok, nil
}

// Snapshot returns a copy of the whole state with any dangling selection hidden.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("[Snapshot] load: %w", err)
	}
	c := snap.Clone()
	c.normalize()
	return c, nil
}
