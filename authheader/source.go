package authheader

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/readiness"
	"github.com/jrsteele09/sgo-connect/tokenstore"
	"golang.org/x/oauth2"
)

// SelectedReader is the part of the token store the source reads from.
type SelectedReader interface {
	GetSelected(ctx context.Context) (tokenstore.TokenRecord, bool, error)
}

// Refresher keeps a record's access token usable.
type Refresher interface {
	EnsureFresh(ctx context.Context, record tokenstore.TokenRecord) (tokenstore.TokenRecord, error)
}

// TokenSource yields the selected record's access token, refreshing it first when it
// is about to expire. Every call waits for the login gate.
type TokenSource struct {
	ctx       context.Context
	store     SelectedReader
	refresher Refresher
	gate      *readiness.Gate
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// NewTokenSource binds the source to ctx, which bounds the gate wait and any refresh.
func NewTokenSource(ctx context.Context, store SelectedReader, refresher Refresher, gate *readiness.Gate) (*TokenSource, error) {
	if store == nil {
		return nil, fmt.Errorf("[NewTokenSource] store is required")
	}
	if refresher == nil {
		return nil, fmt.Errorf("[NewTokenSource] refresher is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("[NewTokenSource] gate is required")
	}
	return &TokenSource{ctx: ctx, store: store, refresher: refresher, gate: gate}, nil
}

func (s *TokenSource) Token() (*oauth2.Token, error) {
	if err := s.gate.Wait(s.ctx); err != nil {
		return nil, err
	}
	record, ok, err := s.store.GetSelected(s.ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotLoggedIn
	}
	record, err = s.refresher.EnsureFresh(s.ctx, record)
	if err != nil {
		return nil, err
	}
	return record.Pair().OAuth2Token(), nil
}

// NewClient returns a client that sets "Authorization: Bearer <token>" on every
// request from src. base supplies the underlying transport and may be nil.
func NewClient(src oauth2.TokenSource, base *http.Client) *http.Client {
	var c http.Client
	if base != nil {
		c = *base
	}
	c.Transport = &oauth2.Transport{
		Source: src,
		Base:   c.Transport,
	}
	return &c
}
