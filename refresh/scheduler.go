package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/sgo-connect/exchange"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/tokenstore"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// DefaultSkew is how long before expiry a token is already treated as stale.
const DefaultSkew = time.Minute

// TokenReplacer is the part of the token store the scheduler writes to.
type TokenReplacer interface {
	ReplaceToken(ctx context.Context, record tokenstore.TokenRecord) error
}

// Scheduler renews access tokens shortly before they expire. Concurrent refreshes
// of the same record share one call to the token endpoint.
type Scheduler struct {
	exchanger exchange.Exchanger
	store     TokenReplacer
	skew      time.Duration
	now       func() time.Time
	group     singleflight.Group
	tracer    trace.Tracer
}

type Option func(*Scheduler)

func WithSkew(skew time.Duration) Option {
	return func(s *Scheduler) {
		if skew >= 0 {
			s.skew = skew
		}
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(exchanger exchange.Exchanger, store TokenReplacer, options ...Option) (*Scheduler, error) {
	if exchanger == nil {
		return nil, fmt.Errorf("[NewScheduler] exchanger is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[NewScheduler] store is required")
	}
	s := &Scheduler{
		exchanger: exchanger,
		store:     store,
		skew:      DefaultSkew,
		now:       time.Now,
		tracer:    otel.Tracer("github.com/jrsteele09/sgo-connect/refresh"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// EnsureFresh returns record unchanged while its access token is still valid for
// longer than the skew. Otherwise it redeems the refresh token, stores the
// replacement under the same id and returns it. Failures are not retried.
// Cancelling ctx releases this caller only; a refresh already in flight completes
// for the callers still waiting on it.
func (s *Scheduler) EnsureFresh(ctx context.Context, record tokenstore.TokenRecord) (tokenstore.TokenRecord, error) {
	if !record.NeedsRefresh(s.now(), s.skew) {
		return record.Clone(), nil
	}

	ctx, span := s.tracer.Start(ctx, "refresh.EnsureFresh", trace.WithAttributes(
		attribute.String("token.id", record.ID),
	))
	defer span.End()

	if record.RefreshToken == "" {
		err := fmt.Errorf("[EnsureFresh] %w: %w", apperrors.ErrRefreshFailed, apperrors.ErrNoRefreshToken)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no refresh token")
		return tokenstore.TokenRecord{}, err
	}

	// The shared call outlives any single caller; the exchanger's timeout bounds it.
	flight := s.group.DoChan(record.ID, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), record)
	})
	select {
	case res := <-flight:
		span.SetAttributes(attribute.Bool("refresh.shared", res.Shared))
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, "refresh failed")
			return tokenstore.TokenRecord{}, fmt.Errorf("[EnsureFresh] %w: %w", apperrors.ErrRefreshFailed, res.Err)
		}
		return res.Val.(tokenstore.TokenRecord).Clone(), nil
	case <-ctx.Done():
		err := ctx.Err()
		span.RecordError(err)
		span.SetStatus(codes.Error, "caller gave up")
		return tokenstore.TokenRecord{}, fmt.Errorf("[EnsureFresh] %w: %w", apperrors.ErrRefreshFailed, err)
	}
}

func (s *Scheduler) refresh(ctx context.Context, record tokenstore.TokenRecord) (tokenstore.TokenRecord, error) {
	pair, err := s.exchanger.ExchangeRefresh(ctx, record.RefreshToken)
	if err != nil {
		var perr *exchange.ProtocolError
		if apperrors.As(err, &perr) && perr.InvalidGrant() {
			log.Warn().Str("token_id", record.ID).Msg("Refresh token no longer accepted, sign in again")
		} else {
			log.Warn().Err(err).Str("token_id", record.ID).Msg("Token refresh failed")
		}
		return tokenstore.TokenRecord{}, err
	}

	replacement := record.WithPair(pair)

	if err := s.store.ReplaceToken(ctx, replacement); err != nil {
		log.Err(err).Str("token_id", record.ID).Msg("Storing refreshed token failed")
		return tokenstore.TokenRecord{}, err
	}
	log.Debug().Str("token_id", record.ID).Time("expires_at", pair.ExpiresAt).Msg("Token refreshed")
	return replacement, nil
}
