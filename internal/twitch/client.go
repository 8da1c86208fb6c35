package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/nicklaw5/helix/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "twitchpanel/1.0"

	// Helix caps both followed-stream pages and user lookups at 100
	maxPageSize = 100

	// Helix allows 800 points per minute per token
	defaultRequestsPerSecond = 10
)

// ClientConfig holds what is needed to call Helix on behalf of a user
type ClientConfig struct {
	ClientID    string
	AccessToken string
	APIBaseURL  string  // empty for the public API
	RateLimit   float64 // requests per second, 0 for the default
}

// Client implements the followed-streams directory on top of the Helix API
type Client struct {
	api     *helix.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	mu             sync.Mutex
	userID         string // resolved from the token on first use
	onUnauthorized func()
}

// NewClient creates a new Helix API client
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := &helix.Options{
		ClientID:        cfg.ClientID,
		UserAccessToken: cfg.AccessToken,
		UserAgent:       userAgent,
		HTTPClient:      &http.Client{Timeout: defaultTimeout},
	}
	if cfg.APIBaseURL != "" {
		opts.APIBaseURL = cfg.APIBaseURL
	}

	api, err := helix.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &Client{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		logger:  logger,
	}, nil
}

// OnUnauthorized registers a hook run whenever Helix rejects the token.
// The TUI uses it to start re-authentication.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// SetAccessToken swaps the user token and forgets the resolved user
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.api.SetUserAccessToken(token)
	c.userID = ""
}

// HasToken reports whether a user token is configured
func (c *Client) HasToken() bool {
	return c.api.GetUserAccessToken() != ""
}

// FetchFollowedStreams returns every live channel the token's user follows,
// joined with each broadcaster's avatar.
func (c *Client) FetchFollowedStreams(ctx context.Context) (domain.DirectorySnapshot, error) {
	if !c.HasToken() {
		return domain.DirectorySnapshot{}, &domain.FetchError{Op: "authenticate", Err: domain.ErrAuthRequired}
	}

	userID, err := c.currentUserID(ctx)
	if err != nil {
		return domain.DirectorySnapshot{}, &domain.FetchError{Op: "resolve user", Err: err}
	}

	streams, err := fetchPages(ctx, func(ctx context.Context, cursor string) ([]helix.Stream, string, error) {
		return c.followedPage(ctx, userID, cursor)
	})
	if err != nil {
		return domain.DirectorySnapshot{}, &domain.FetchError{Op: "get followed streams", Err: err}
	}

	avatars, err := c.avatars(ctx, streams)
	if err != nil {
		if domain.IsAuthError(err) {
			return domain.DirectorySnapshot{}, &domain.FetchError{Op: "get users", Err: err}
		}
		// Avatars are cosmetic; keep the directory
		c.logger.Warn("failed to fetch avatars", "error", err)
	}

	c.logger.Debug("fetched followed streams", "count", len(streams))
	return domain.NewDirectorySnapshot(MapStreams(streams, avatars), time.Now()), nil
}

// CurrentUser returns the id and login of the token's owner
func (c *Client) CurrentUser(ctx context.Context) (id, login string, err error) {
	users, err := c.getUsers(ctx, nil)
	if err != nil {
		return "", "", err
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("token has no associated user: %w", domain.ErrAuthRequired)
	}
	return users[0].ID, users[0].Login, nil
}

func (c *Client) currentUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.userID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	id, login, err := c.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	c.logger.Info("resolved twitch user", "userID", id, "login", login)

	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
	return id, nil
}

func (c *Client) followedPage(ctx context.Context, userID, cursor string) ([]helix.Stream, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	c.logger.Debug("helix request", "endpoint", "streams/followed", "cursor", cursor)
	resp, err := c.api.GetFollowedStream(&helix.FollowedStreamsParams{
		UserID: userID,
		First:  maxPageSize,
		After:  cursor,
	})
	if err != nil {
		return nil, "", c.transportError(err)
	}
	if err := c.checkResponse(resp.ResponseCommon); err != nil {
		return nil, "", err
	}
	return resp.Data.Streams, resp.Data.Pagination.Cursor, nil
}

// avatars maps broadcaster id to profile image URL
func (c *Client) avatars(ctx context.Context, streams []helix.Stream) (map[string]string, error) {
	out := make(map[string]string, len(streams))
	ids := make([]string, 0, len(streams))
	for _, s := range streams {
		ids = append(ids, s.UserID)
	}

	for start := 0; start < len(ids); start += maxPageSize {
		end := min(start+maxPageSize, len(ids))
		users, err := c.getUsers(ctx, ids[start:end])
		if err != nil {
			return out, err
		}
		for _, u := range users {
			out[u.ID] = u.ProfileImageURL
		}
	}
	return out, nil
}

// getUsers looks up users by id; no ids returns the token's owner
func (c *Client) getUsers(ctx context.Context, ids []string) ([]helix.User, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("helix request", "endpoint", "users", "ids", len(ids))
	resp, err := c.api.GetUsers(&helix.UsersParams{IDs: ids})
	if err != nil {
		return nil, c.transportError(err)
	}
	if err := c.checkResponse(resp.ResponseCommon); err != nil {
		return nil, err
	}
	return resp.Data.Users, nil
}

func (c *Client) transportError(err error) error {
	c.logger.Error("helix request failed", "error", err)
	return fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
}

// checkResponse maps Helix status codes onto domain errors. A 401 also runs
// the unauthorized hook so the caller can renew the token.
func (c *Client) checkResponse(resp helix.ResponseCommon) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.Warn("helix rejected token", "message", resp.ErrorMessage)
		c.mu.Lock()
		hook := c.onUnauthorized
		c.mu.Unlock()
		if hook != nil {
			hook()
		}
		return domain.ErrAuthRequired
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		c.logger.Error("helix request error", "status", resp.StatusCode, "message", resp.ErrorMessage)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, resp.ErrorMessage)
	}
}
