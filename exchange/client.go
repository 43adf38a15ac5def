package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/sgo-connect/oauthmodel"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a token endpoint reply is read.
const maxBodyBytes = 1 << 20

// TokenPair is the credential set returned by a successful grant.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// OAuth2Token converts p for use with golang.org/x/oauth2 transports.
func (p TokenPair) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    oauthmodel.TokenType,
		Expiry:       p.ExpiresAt,
	}
}

// Exchanger is what the login flow and the refresh policy need from the token endpoint.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code int) (TokenPair, error)
	ExchangeRefresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// Client talks to the provider's token endpoint. It holds no credentials of its own
// and never retries.
type Client struct {
	tokenURL   string
	clientID   string
	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
}

var _ Exchanger = (*Client)(nil)

type Option func(*Client)

func WithClientID(id string) Option {
	return func(c *Client) {
		c.clientID = id
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTimeout bounds every call made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithNowTime(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func NewClient(tokenURL string, options ...Option) (*Client, error) {
	if tokenURL == "" {
		return nil, fmt.Errorf("[NewClient] token URL is required")
	}
	c := &Client{
		tokenURL:   tokenURL,
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
		now:        time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// ExchangeCode redeems the pin code captured from the callback redirect.
func (c *Client) ExchangeCode(ctx context.Context, code int) (TokenPair, error) {
	return c.do(ctx, "ExchangeCode", oauthmodel.TokenRequest{
		GrantType:  oauthmodel.DeviceCodeGrant,
		ClientID:   c.clientID,
		DeviceCode: code,
	})
}

// ExchangeRefresh trades refreshToken for a new pair. When the provider does not
// rotate refresh tokens the returned pair keeps refreshToken.
func (c *Client) ExchangeRefresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	pair, err := c.do(ctx, "ExchangeRefresh", oauthmodel.TokenRequest{
		GrantType:    oauthmodel.RefreshTokenGrant,
		ClientID:     c.clientID,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return TokenPair{}, err
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return pair, nil
}

func (c *Client) do(ctx context.Context, op string, tr oauthmodel.TokenRequest) (TokenPair, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.tokenURL, strings.NewReader(tr.Values().Encode()))
	if err != nil {
		return TokenPair{}, fmt.Errorf("[%s] build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TokenPair{}, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return TokenPair{}, &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &ProtocolError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Retrieve:   &oauth2.RetrieveError{Response: resp, Body: body},
		}
		var errResp oauthmodel.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			perr.Code = errResp.Error
			perr.Description = errResp.ErrorDescription
			perr.Retrieve.ErrorCode = errResp.Error
			perr.Retrieve.ErrorDescription = errResp.ErrorDescription
		}
		log.Warn().Str("grant", string(tr.GrantType)).Int("status", resp.StatusCode).Str("error", perr.Code).Msg("Token endpoint rejected request")
		return TokenPair{}, perr
	}

	var tokenResp oauthmodel.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return TokenPair{}, &ParseError{Op: op, Err: err}
	}
	pair, err := c.toPair(tokenResp)
	if err != nil {
		return TokenPair{}, &ParseError{Op: op, Err: err}
	}
	return pair, nil
}

func (c *Client) toPair(resp oauthmodel.TokenResponse) (TokenPair, error) {
	if resp.AccessToken == nil || *resp.AccessToken == "" {
		return TokenPair{}, errors.New("access_token is missing")
	}
	if resp.TokenType != "" && !strings.EqualFold(resp.TokenType, oauthmodel.TokenType) {
		return TokenPair{}, fmt.Errorf("unsupported token_type %q", resp.TokenType)
	}

	pair := TokenPair{AccessToken: *resp.AccessToken}
	if resp.RefreshToken != nil {
		pair.RefreshToken = *resp.RefreshToken
	}

	switch {
	case resp.ExpiresIn > 0:
		pair.ExpiresAt = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	default:
		exp, err := expiryFromClaims(pair.AccessToken)
		if err != nil {
			return TokenPair{}, fmt.Errorf("expires_in is missing: %w", err)
		}
		pair.ExpiresAt = exp
	}
	return pair, nil
}

// expiryFromClaims reads the exp claim of a JWT access token without verifying it.
// The token is only inspected for its lifetime, never trusted for identity.
func expiryFromClaims(accessToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("access token is not a JWT: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("access token has no exp claim")
	}
	return exp.Time, nil
}
