package tokenstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/sgo-connect/exchange"
	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/jrsteele09/sgo-connect/profiles"
)

// TokenRecord is one logged-in provider session and the profiles it can act for.
type TokenRecord struct {
	ID           string                 `json:"id"`
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	ExpiresAt    time.Time              `json:"expires_at"`
	Users        []profiles.UserProfile `json:"users"`
}

// NewTokenRecord builds a record with a fresh id.
func NewTokenRecord(accessToken, refreshToken string, expiresAt time.Time, users []profiles.UserProfile) TokenRecord {
	return TokenRecord{
		ID:           uuid.NewString(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Users:        profiles.CloneAll(users),
	}
}

// Clone returns a deep copy of r.
func (r TokenRecord) Clone() TokenRecord {
	c := r
	c.Users = profiles.CloneAll(r.Users)
	return c
}

// Pair returns the record's credentials.
func (r TokenRecord) Pair() exchange.TokenPair {
	return exchange.TokenPair{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    r.ExpiresAt,
	}
}

// WithPair returns a copy of r carrying pair's credentials. Id and users are kept.
func (r TokenRecord) WithPair(pair exchange.TokenPair) TokenRecord {
	c := r.Clone()
	c.AccessToken = pair.AccessToken
	c.RefreshToken = pair.RefreshToken
	c.ExpiresAt = pair.ExpiresAt
	return c
}

// NeedsRefresh reports whether the access token is within skew of expiring at now.
func (r TokenRecord) NeedsRefresh(now time.Time, skew time.Duration) bool {
	return !now.Before(r.ExpiresAt.Add(-skew))
}

// Selection points at the active record and, once its profiles are known, the active user.
type Selection struct {
	SelectedTokenID *string `json:"selected_token_id,omitempty"`
	SelectedUserID  *int    `json:"selected_user_id,omitempty"`
}

// Snapshot is the complete persisted state. Backends read and replace it whole.
type Snapshot struct {
	Tokens    []TokenRecord `json:"tokens"`
	Selection Selection     `json:"selection"`
}

func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Selection: Selection{
			SelectedTokenID: utils.ClonePtr(s.Selection.SelectedTokenID),
			SelectedUserID:  utils.ClonePtr(s.Selection.SelectedUserID),
		},
	}
	if s.Tokens != nil {
		c.Tokens = make([]TokenRecord, len(s.Tokens))
		for i, t := range s.Tokens {
			c.Tokens[i] = t.Clone()
		}
	}
	return c
}

func (s Snapshot) indexOf(id string) int {
	for i, t := range s.Tokens {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Selected returns a copy of the selected record.
func (s Snapshot) Selected() (TokenRecord, bool) {
	if s.Selection.SelectedTokenID == nil {
		return TokenRecord{}, false
	}
	i := s.indexOf(*s.Selection.SelectedTokenID)
	if i < 0 {
		return TokenRecord{}, false
	}
	return s.Tokens[i].Clone(), true
}

// normalize clears selection pointers that no longer resolve. It reports whether
// anything was cleared.
func (s *Snapshot) normalize() bool {
	changed := false
	sel := &s.Selection

	if sel.SelectedTokenID != nil && s.indexOf(*sel.SelectedTokenID) < 0 {
		sel.SelectedTokenID = nil
		changed = true
	}
	if sel.SelectedUserID == nil {
		return changed
	}
	if sel.SelectedTokenID == nil {
		sel.SelectedUserID = nil
		return true
	}
	record := s.Tokens[s.indexOf(*sel.SelectedTokenID)]
	if !profiles.Contains(record.Users, *sel.SelectedUserID) {
		sel.SelectedUserID = nil
		changed = true
	}
	return changed
}
