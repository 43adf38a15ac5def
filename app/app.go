package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jrsteele09/sgo-connect/authheader"
	"github.com/jrsteele09/sgo-connect/exchange"
	"github.com/jrsteele09/sgo-connect/internal/config"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/login"
	"github.com/jrsteele09/sgo-connect/profiles"
	"github.com/jrsteele09/sgo-connect/publish"
	"github.com/jrsteele09/sgo-connect/readiness"
	"github.com/jrsteele09/sgo-connect/redirect"
	"github.com/jrsteele09/sgo-connect/refresh"
	"github.com/jrsteele09/sgo-connect/tokenstore"
	"github.com/rs/zerolog/log"
)

// App wires the login flow, token store and refresh policy from one configuration.
type App struct {
	config    config.Config
	store     *tokenstore.Store
	gate      *readiness.Gate
	exchanger exchange.Exchanger
	scheduler *refresh.Scheduler
	publisher *publish.Publisher
	closeRepo func() error
	loggingIn atomic.Bool
}

type Option func(*App)

// WithExchanger replaces the token endpoint client built from configuration.
func WithExchanger(e exchange.Exchanger) Option {
	return func(a *App) {
		a.exchanger = e
	}
}

func New(ctx context.Context, cfg config.Config, options ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[app New] config is required")
	}
	a := &App{config: cfg, gate: readiness.New()}
	for _, opt := range options {
		opt(a)
	}

	repo, closeRepo, err := tokenstore.OpenRepo(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("[app New] %w", err)
	}
	a.closeRepo = closeRepo
	if a.store, err = tokenstore.New(repo); err != nil {
		_ = closeRepo()
		return nil, fmt.Errorf("[app New] %w", err)
	}

	if a.exchanger == nil {
		if a.exchanger, err = newExchanger(ctx, cfg); err != nil {
			_ = closeRepo()
			return nil, fmt.Errorf("[app New] %w", err)
		}
	}

	a.scheduler, err = refresh.NewScheduler(a.exchanger, a.store, refresh.WithSkew(cfg.GetRefreshSkew()))
	if err != nil {
		_ = closeRepo()
		return nil, fmt.Errorf("[app New] %w", err)
	}

	a.publisher, err = publish.NewPublisher(cfg.GetPublishURL(),
		publish.WithRetry(cfg.GetPublishMaxAttempts(), cfg.GetPublishRetryDelay()),
		publish.WithTimeout(cfg.GetPublishTimeout()),
	)
	if err != nil {
		_ = closeRepo()
		return nil, fmt.Errorf("[app New] %w", err)
	}
	return a, nil
}

func newExchanger(ctx context.Context, cfg config.OAuthConfig) (*exchange.Client, error) {
	tokenURL := cfg.GetTokenURL()
	if cfg.GetOIDCDiscovery() {
		endpoint, err := exchange.DiscoverEndpoint(ctx, cfg.GetIdentityURL(), nil)
		if err != nil {
			return nil, err
		}
		tokenURL = endpoint.TokenURL
		log.Debug().Str("token_url", tokenURL).Msg("Token endpoint discovered")
	}
	return exchange.NewClient(tokenURL,
		exchange.WithClientID(cfg.GetClientID()),
		exchange.WithTimeout(cfg.GetExchangeTimeout()),
	)
}

func (a *App) Store() *tokenstore.Store {
	return a.store
}

func (a *App) Gate() *readiness.Gate {
	return a.gate
}

func (a *App) Scheduler() *refresh.Scheduler {
	return a.scheduler
}

// Start prepares the store for use. A fresh start forgets every stored token;
// otherwise an existing selection marks the app as logged in.
func (a *App) Start(ctx context.Context, freshStart bool) error {
	if freshStart {
		if err := a.store.ClearAll(ctx); err != nil {
			return fmt.Errorf("[app Start] %w", err)
		}
		a.gate.Close()
		log.Info().Msg("Stored tokens cleared")
		return nil
	}
	_, ok, err := a.store.GetSelected(ctx)
	if err != nil {
		return fmt.Errorf("[app Start] %w", err)
	}
	if ok {
		a.gate.Open()
	}
	return nil
}

func (a *App) resolver(regionURL string) (*profiles.Resolver, error) {
	if regionURL == "" {
		regionURL = a.config.GetRegionURL()
	}
	return profiles.NewResolver(regionURL, profiles.WithTimeout(a.config.GetProfileTimeout()))
}

// Login runs one browser login against regionURL, or the configured region when
// it is empty. A second call while one is running fails with ErrLoginInProgress.
func (a *App) Login(ctx context.Context, browser login.Browser, regionURL string) (login.LoginOutcome, error) {
	if !a.loggingIn.CompareAndSwap(false, true) {
		return login.LoginOutcome{}, apperrors.ErrLoginInProgress
	}
	defer a.loggingIn.Store(false)

	if regionURL == "" {
		regionURL = a.config.GetRegionURL()
	}
	resolver, err := a.resolver(regionURL)
	if err != nil {
		return login.LoginOutcome{}, err
	}
	controller, err := login.NewController(browser, a.exchanger, resolver, a.store,
		login.WithInterceptor(redirect.New(a.config.GetCallbackScheme(), a.config.GetPinCodeParam())),
		login.WithGate(a.gate),
	)
	if err != nil {
		return login.LoginOutcome{}, err
	}
	return controller.Authorize(ctx, regionURL)
}

// TokenSource returns a source of bearer tokens for the selected record.
func (a *App) TokenSource(ctx context.Context) (*authheader.TokenSource, error) {
	return authheader.NewTokenSource(ctx, a.store, a.scheduler, a.gate)
}

// ReloadProfiles fetches the selected token's profiles again and stores them.
func (a *App) ReloadProfiles(ctx context.Context, regionURL string) ([]profiles.UserProfile, error) {
	resolver, err := a.resolver(regionURL)
	if err != nil {
		return nil, err
	}
	record, ok, err := a.store.GetSelected(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotLoggedIn
	}
	record, err = a.scheduler.EnsureFresh(ctx, record)
	if err != nil {
		return nil, err
	}
	users, err := resolver.FetchUsers(ctx, record.AccessToken)
	if err != nil {
		return nil, err
	}
	if err := a.store.UpdateUsers(ctx, record.ID, users); err != nil {
		return nil, err
	}
	return users, nil
}

// Publish sends the selected record to the backend, refreshing it first so the
// published refresh token is the current one.
func (a *App) Publish(ctx context.Context, userID *int) (publish.TokenID, error) {
	record, ok, err := a.store.GetSelected(ctx)
	if err != nil {
		return publish.TokenID{}, err
	}
	if !ok {
		return publish.TokenID{}, apperrors.ErrNotLoggedIn
	}
	record, err = a.scheduler.EnsureFresh(ctx, record)
	if err != nil {
		return publish.TokenID{}, err
	}
	return a.publisher.Publish(ctx, record, userID)
}

// Logout forgets every stored token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.ClearAll(ctx); err != nil {
		return err
	}
	a.gate.Close()
	return nil
}

func (a *App) Close() error {
	if a.closeRepo == nil {
		return nil
	}
	return a.closeRepo()
}
