package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/jrsteele09/sgo-connect/oauthmodel"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// UsersPath is the profile listing endpoint relative to the regional portal.
const UsersPath = "api/mobile/users?v=2"

const defaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a profile response is read.
const maxBodyBytes = 4 << 20

// Resolver fetches the user profiles reachable under an access token.
type Resolver struct {
	usersURL   string
	httpClient *http.Client
	timeout    time.Duration
}

type ResolverOption func(*Resolver)

// WithHTTPClient sets the base client the bearer transport wraps.
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewResolver(regionBaseURL string, options ...ResolverOption) (*Resolver, error) {
	if regionBaseURL == "" {
		return nil, fmt.Errorf("[NewResolver] region base URL is required")
	}
	r := &Resolver{
		usersURL:   utils.JoinURL(regionBaseURL, UsersPath),
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// FetchUsers lists the profiles for accessToken. Zero profiles is an empty slice,
// not an error; deciding whether that is acceptable is left to the caller.
func (r *Resolver) FetchUsers(ctx context.Context, accessToken string) ([]UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   oauthmodel.TokenType,
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.usersURL, nil)
	if err != nil {
		return nil, fmt.Errorf("[FetchUsers] build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[FetchUsers] %w: %w", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("[FetchUsers] %w: read body: %w", apperrors.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("url", r.usersURL).Msg("Profile endpoint rejected request")
		return nil, fmt.Errorf("[FetchUsers] %w: status %d", apperrors.ErrProtocol, resp.StatusCode)
	}

	var users []UserProfile
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("[FetchUsers] %w: %w", apperrors.ErrParse, err)
	}
	if users == nil {
		users = []UserProfile{}
	}
	return Sanitize(users), nil
}
