package login

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/sgo-connect/exchange"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/jrsteele09/sgo-connect/profiles"
	"github.com/jrsteele09/sgo-connect/readiness"
	"github.com/jrsteele09/sgo-connect/redirect"
	"github.com/jrsteele09/sgo-connect/tokenstore"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoginPath is the provider's mobile login page relative to the regional portal.
const LoginPath = "authorize/login?mobile"

type ProfileFetcher interface {
	FetchUsers(ctx context.Context, accessToken string) ([]profiles.UserProfile, error)
}

// Store is the part of the token store a successful login writes to.
type Store interface {
	AddAndSelect(ctx context.Context, record tokenstore.TokenRecord, userID *int) error
}

// LoginOutcome is the result of a completed attempt. Users holds every profile the
// new token can act for; when there is exactly one it is already selected.
type LoginOutcome struct {
	TokenID string
	Users   []profiles.UserProfile
}

// Controller drives one browser login at a time: it waits for the provider's
// redirect, redeems the code, resolves profiles and stores the new token.
type Controller struct {
	browser     Browser
	exchanger   exchange.Exchanger
	profiles    ProfileFetcher
	store       Store
	interceptor *redirect.Interceptor
	gate        *readiness.Gate
	tracer      trace.Tracer

	running atomic.Bool
	mu      sync.RWMutex
	state   State
}

type Option func(*Controller)

func WithInterceptor(i *redirect.Interceptor) Option {
	return func(c *Controller) {
		c.interceptor = i
	}
}

// WithGate opens g once a login completes.
func WithGate(g *readiness.Gate) Option {
	return func(c *Controller) {
		c.gate = g
	}
}

func NewController(browser Browser, exchanger exchange.Exchanger, fetcher ProfileFetcher, store Store, options ...Option) (*Controller, error) {
	if browser == nil {
		return nil, fmt.Errorf("[NewController] browser is required")
	}
	if exchanger == nil {
		return nil, fmt.Errorf("[NewController] exchanger is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("[NewController] profile fetcher is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[NewController] store is required")
	}
	c := &Controller{
		browser:     browser,
		exchanger:   exchanger,
		profiles:    fetcher,
		store:       store,
		interceptor: redirect.New(redirect.DefaultScheme, redirect.DefaultPinCodeParam),
		tracer:      otel.Tracer("github.com/jrsteele09/sgo-connect/login"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	ev := log.Debug()
	if s.Terminal() {
		ev = log.Info()
	}
	ev.Str("from", prev.String()).Str("to", s.String()).Msg("Login state changed")
}

// Authorize runs one login attempt against the regional portal at regionBaseURL.
// A second call on the same Controller while one is running fails with
// ErrLoginInProgress. Cancelling ctx
// ends the attempt with ctx's error; every other failure is an *AuthError.
func (c *Controller) Authorize(ctx context.Context, regionBaseURL string) (LoginOutcome, error) {
	if !c.running.CompareAndSwap(false, true) {
		return LoginOutcome{}, apperrors.ErrLoginInProgress
	}
	defer c.running.Store(false)

	ctx, span := c.tracer.Start(ctx, "login.Authorize")
	defer span.End()

	outcome, err := c.authorize(ctx, regionBaseURL)
	span.SetAttributes(attribute.String("login.state", c.State().String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, c.State().String())
		return LoginOutcome{}, err
	}
	return outcome, nil
}

func (c *Controller) authorize(ctx context.Context, regionBaseURL string) (LoginOutcome, error) {
	c.setState(Idle)
	if regionBaseURL == "" {
		return LoginOutcome{}, c.fail(&AuthError{Kind: KindNetwork, Err: fmt.Errorf("region base URL is required")})
	}

	c.setState(AwaitingCode)
	code, err := c.awaitCode(ctx, utils.JoinURL(regionBaseURL, LoginPath))
	if err != nil {
		return LoginOutcome{}, c.failOrCancel(ctx, err)
	}

	c.setState(ExchangingCode)
	pair, err := c.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		if ctx.Err() != nil {
			return LoginOutcome{}, c.failOrCancel(ctx, err)
		}
		log.Warn().Err(err).Msg("Pin code exchange failed")
		return LoginOutcome{}, c.fail(classifyExchange(err))
	}

	c.setState(ResolvingProfiles)
	users, err := c.profiles.FetchUsers(ctx, pair.AccessToken)
	if err != nil {
		if ctx.Err() != nil {
			return LoginOutcome{}, c.failOrCancel(ctx, err)
		}
		log.Warn().Err(err).Msg("Profile resolution failed")
		return LoginOutcome{}, c.fail(&AuthError{Kind: KindNetwork, Err: err})
	}
	if len(users) == 0 {
		return LoginOutcome{}, c.fail(&AuthError{Kind: KindInvalidCode, Err: fmt.Errorf("token has no user profiles")})
	}

	record := tokenstore.NewTokenRecord(pair.AccessToken, pair.RefreshToken, pair.ExpiresAt, users)
	if err := c.persist(ctx, record); err != nil {
		c.setState(NetworkFailed)
		return LoginOutcome{}, err
	}

	if c.gate != nil {
		c.gate.Open()
	}
	c.setState(Completed)
	log.Info().Str("token_id", record.ID).Int("profiles", len(users)).Msg("Login completed")
	return LoginOutcome{TokenID: record.ID, Users: profiles.CloneAll(record.Users)}, nil
}

// awaitCode opens the login page and blocks until the redirect delivers a code, the
// user dismisses the view or ctx is done. The view is closed on return.
func (c *Controller) awaitCode(ctx context.Context, authURL string) (int, error) {
	session := c.interceptor.NewSession()
	view, err := c.browser.Open(ctx, authURL, session.Navigate)
	if err != nil {
		return 0, &AuthError{Kind: KindNetwork, Err: fmt.Errorf("open login page: %w", err)}
	}
	defer func() {
		if err := view.Close(); err != nil {
			log.Err(err).Msg("Closing login view failed")
		}
	}()

	select {
	case code := <-session.Code():
		return code, nil
	case <-view.Dismissed():
		// The redirect may have landed just as the view went away.
		select {
		case code := <-session.Code():
			return code, nil
		default:
		}
		return 0, &AuthError{Kind: KindUserCancelled}
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c *Controller) persist(ctx context.Context, record tokenstore.TokenRecord) error {
	var userID *int
	if len(record.Users) == 1 {
		userID = utils.Ptr(record.Users[0].ID)
	}
	if err := c.store.AddAndSelect(ctx, record, userID); err != nil {
		return fmt.Errorf("[Authorize] store token: %w", err)
	}
	return nil
}

func (c *Controller) fail(err *AuthError) error {
	c.setState(err.Kind.state())
	return err
}

func (c *Controller) failOrCancel(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.setState(CancelledByUser)
		return fmt.Errorf("[Authorize] %w", ctxErr)
	}
	var authErr *AuthError
	if apperrors.As(err, &authErr) {
		return c.fail(authErr)
	}
	return c.fail(&AuthError{Kind: KindNetwork, Err: err})
}
