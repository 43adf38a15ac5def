package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/jrsteele09/sgo-connect/tokenstore"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TokensPath is the backend endpoint that accepts refresh tokens.
const TokensPath = "v1/tokens/"

const maxBodyBytes = 1 << 20

// Publisher hands a record's refresh token and profiles to the SGO Connect backend.
// Server and network failures are retried with exponential backoff.
type Publisher struct {
	url         string
	httpClient  *http.Client
	maxAttempts uint
	retryDelay  time.Duration
	timeout     time.Duration
	tracer      trace.Tracer
}

type Option func(*Publisher)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Publisher) {
		p.httpClient = c
	}
}

// WithRetry sets the attempt limit and the first retry delay.
func WithRetry(maxAttempts uint, delay time.Duration) Option {
	return func(p *Publisher) {
		if maxAttempts > 0 {
			p.maxAttempts = maxAttempts
		}
		if delay > 0 {
			p.retryDelay = delay
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPublisher(baseURL string, options ...Option) (*Publisher, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("[NewPublisher] base URL is required")
	}
	p := &Publisher{
		url:         utils.JoinURL(baseURL, TokensPath),
		httpClient:  http.DefaultClient,
		maxAttempts: 5,
		retryDelay:  2 * time.Second,
		timeout:     5 * time.Second,
		tracer:      otel.Tracer("github.com/jrsteele09/sgo-connect/publish"),
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Publish sends record. When userID is set only that profile is included.
func (p *Publisher) Publish(ctx context.Context, record tokenstore.TokenRecord, userID *int) (TokenID, error) {
	ctx, span := p.tracer.Start(ctx, "publish.Publish", trace.WithAttributes(
		attribute.String("token.id", record.ID),
	))
	defer span.End()

	if record.RefreshToken == "" {
		return TokenID{}, fmt.Errorf("[Publish] %w", apperrors.ErrNoRefreshToken)
	}
	payload, ok := newPayload(record, userID)
	if !ok {
		return TokenID{}, fmt.Errorf("[Publish] user %d: %w", utils.Value(userID), apperrors.ErrNotFound)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return TokenID{}, fmt.Errorf("[Publish] encode: %w", err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.retryDelay
	attempt := 0

	id, err := backoff.Retry(ctx, func() (TokenID, error) {
		attempt++
		return p.post(ctx, body)
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(p.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("Publishing token failed, retrying")
		}),
	)
	span.SetAttributes(attribute.Int("publish.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return TokenID{}, fmt.Errorf("[Publish] %w", err)
	}
	log.Info().Str("token_id", id.TokenID).Time("expires_at", id.ExpiresAt).Msg("Token published")
	return id, nil
}

// post makes one attempt. Errors that a retry cannot fix are marked permanent.
func (p *Publisher) post(ctx context.Context, body []byte) (TokenID, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return TokenID{}, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return TokenID{}, backoff.Permanent(ctx.Err())
		}
		return TokenID{}, fmt.Errorf("%w: %w", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return TokenID{}, fmt.Errorf("%w: read body: %w", apperrors.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		if errors.Is(apiErr, ErrServer) {
			return TokenID{}, apiErr
		}
		return TokenID{}, backoff.Permanent(apiErr)
	}

	var id TokenID
	if err := json.Unmarshal(data, &id); err != nil {
		return TokenID{}, backoff.Permanent(fmt.Errorf("%w: %w", apperrors.ErrParse, err))
	}
	return id, nil
}
