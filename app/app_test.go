package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/sgo-connect/app"
	"github.com/jrsteele09/sgo-connect/internal/config"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/login"
	"github.com/jrsteele09/sgo-connect/tokenstore"
	"github.com/stretchr/testify/require"
)

type portal struct {
	refreshes atomic.Int32
	published atomic.Int32
	usersBody atomic.Value
}

func (p *portal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") == "refresh_token" {
			p.refreshes.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600}`))
	})
	mux.HandleFunc("/api/mobile/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(p.usersBody.Load().(string)))
	})
	mux.HandleFunc("/v1/tokens/", func(w http.ResponseWriter, r *http.Request) {
		p.published.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token_id":"0b7c8a36-8c67-4f38-9d3e-6d4c0d9b1a11","expires_at":"2026-06-01T00:00:00Z","token_expires_seconds":600}`))
	})
	return mux
}

type redirectingBrowser struct{}

type staticView struct{ dismissed chan struct{} }

func (v staticView) Dismissed() <-chan struct{} { return v.dismissed }
func (v staticView) Close() error               { return nil }

func (redirectingBrowser) Open(_ context.Context, _ string, navigate login.Navigator) (login.View, error) {
	go navigate("sgo://done?code=77")
	return staticView{dismissed: make(chan struct{})}, nil
}

// parkedBrowser opens a view that never redirects and reports each open.
type parkedBrowser struct{ opened chan struct{} }

func (b parkedBrowser) Open(context.Context, string, login.Navigator) (login.View, error) {
	b.opened <- struct{}{}
	return staticView{dismissed: make(chan struct{})}, nil
}

func setupTestFixture(t *testing.T) (*app.App, *portal) {
	t.Helper()
	p := &portal{}
	p.usersBody.Store(`[{"id":7,"firstName":"Anna"}]`)
	srv := httptest.NewServer(p.handler())
	t.Cleanup(srv.Close)

	cfg, err := config.NewFromMap(map[string]string{
		"SGO_STORE_BACKEND":        "memory",
		"SGO_REGION_URL":           srv.URL,
		"SGO_IDENTITY_URL":         srv.URL,
		"SGO_CALLBACK_SCHEME":      "sgo",
		"SGO_PINCODE_PARAM":        "code",
		"SGO_PUBLISH_URL":          srv.URL,
		"SGO_PUBLISH_RETRY_DELAY":  "1ms",
		"SGO_PUBLISH_MAX_ATTEMPTS": "2",
	})
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, p
}

func TestApp_LoginThenUseToken(t *testing.T) {
	ctx := context.Background()
	a, p := setupTestFixture(t)
	require.NoError(t, a.Start(ctx, false))
	require.False(t, a.Gate().IsOpen())

	outcome, err := a.Login(ctx, redirectingBrowser{}, "")
	require.NoError(t, err)
	require.Len(t, outcome.Users, 1)
	require.True(t, a.Gate().IsOpen())

	snap, err := a.Store().Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, *snap.Selection.SelectedUserID)

	src, err := a.TokenSource(ctx)
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	require.Equal(t, "at", tok.AccessToken)
	require.Zero(t, p.refreshes.Load())

	p.usersBody.Store(`[{"id":7,"firstName":"Anna"},{"id":8,"firstName":"Boris"}]`)
	users, err := a.ReloadProfiles(ctx, "")
	require.NoError(t, err)
	require.Len(t, users, 2)
	record, _, err := a.Store().GetSelected(ctx)
	require.NoError(t, err)
	require.Len(t, record.Users, 2)

	id, err := a.Publish(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 600, id.TokenExpiresSeconds)
	require.Equal(t, int32(1), p.published.Load())

	require.NoError(t, a.Logout(ctx))
	require.False(t, a.Gate().IsOpen())
	_, ok, err := a.Store().GetSelected(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestApp_Start(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestFixture(t)

	record := tokenstore.NewTokenRecord("at", "rt", time.Now().Add(time.Hour), nil)
	require.NoError(t, a.Store().AddToken(ctx, record))
	require.NoError(t, a.Store().SelectToken(ctx, record.ID))

	require.NoError(t, a.Start(ctx, false))
	require.True(t, a.Gate().IsOpen())

	require.NoError(t, a.Start(ctx, true))
	require.False(t, a.Gate().IsOpen())
	_, ok, err := a.Store().GetSelected(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestApp_NotLoggedIn(t *testing.T) {
	ctx := context.Background()
	a, _ := setupTestFixture(t)

	_, err := a.Publish(ctx, nil)
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
	_, err = a.ReloadProfiles(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
}

func TestApp_LoginRejectsConcurrentAttempt(t *testing.T) {
	a, _ := setupTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	browser := parkedBrowser{opened: make(chan struct{}, 1)}
	first := make(chan error, 1)
	go func() {
		_, err := a.Login(ctx, browser, "")
		first <- err
	}()
	<-browser.opened

	_, err := a.Login(context.Background(), redirectingBrowser{}, "")
	require.ErrorIs(t, err, apperrors.ErrLoginInProgress)

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	_, err = a.Login(context.Background(), redirectingBrowser{}, "")
	require.NoError(t, err)
}
