package twitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mmcdole/twitchpanel/internal/domain"
	"github.com/nicklaw5/helix/v2"
)

const (
	// DefaultRedirectURI must match the redirect registered for the client id exactly
	DefaultRedirectURI = "http://localhost:3000/"

	followsScope       = "user:read:follows"
	defaultAuthTimeout = 5 * time.Minute
	shutdownTimeout    = 2 * time.Second
)

// Auth errors
var (
	// ErrAuthTimeout indicates the browser never completed the redirect
	ErrAuthTimeout = errors.New("timed out waiting for twitch authorization")
	// ErrAuthDenied indicates the user declined the authorization request
	ErrAuthDenied = errors.New("twitch authorization was denied")
)

// Token is a validated user access token
type Token struct {
	AccessToken string
	UserID      string
	Login       string
	Scopes      []string
	ExpiresIn   time.Duration
}

// tokenValidator checks a token against the Twitch identity service
type tokenValidator interface {
	ValidateToken(accessToken string) (bool, *helix.ValidateTokenResponse, error)
}

// AuthConfig configures the implicit-grant flow
type AuthConfig struct {
	ClientID    string
	RedirectURI string // loopback address the callback server listens on
}

// Authenticator runs Twitch's implicit-grant OAuth flow. The authorize page
// redirects the browser back to a short-lived loopback server, whose page
// forwards the token from the URL fragment to /callback.
type Authenticator struct {
	cfg       AuthConfig
	open      func(url string) error
	validator tokenValidator
	listen    func(network, address string) (net.Listener, error)
	timeout   time.Duration
	logger    *slog.Logger

	mu    sync.Mutex
	token Token
}

// NewAuthenticator creates an authenticator. current is the stored token, if
// any; open is called with the authorize URL (typically to launch a browser).
func NewAuthenticator(cfg AuthConfig, current string, open func(url string) error, logger *slog.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}

	validator, err := helix.NewClient(&helix.Options{
		ClientID:    cfg.ClientID,
		RedirectURI: cfg.RedirectURI,
		UserAgent:   userAgent,
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create helix client: %w", err)
	}

	return &Authenticator{
		cfg:       cfg,
		open:      open,
		validator: validator,
		listen:    net.Listen,
		timeout:   defaultAuthTimeout,
		logger:    logger,
		token:     Token{AccessToken: current},
	}, nil
}

// Token returns the current token, which may be empty
func (a *Authenticator) Token() Token {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// Authenticate returns the current token unless renew is set or there is no
// token, in which case it runs the browser flow and blocks until the redirect
// arrives, ctx is cancelled, or the flow times out.
func (a *Authenticator) Authenticate(ctx context.Context, renew bool) (Token, error) {
	if current := a.Token(); !renew && current.AccessToken != "" {
		return current, nil
	}

	accessToken, err := a.authorize(ctx, renew)
	if err != nil {
		return Token{}, err
	}

	tok, err := a.Validate(accessToken)
	if err != nil {
		return Token{}, err
	}

	a.mu.Lock()
	a.token = tok
	a.mu.Unlock()

	a.logger.Info("twitch authorization complete", "login", tok.Login, "expiresIn", tok.ExpiresIn)
	return tok, nil
}

// Validate checks accessToken with Twitch and returns its owner
func (a *Authenticator) Validate(accessToken string) (Token, error) {
	ok, resp, err := a.validator.ValidateToken(accessToken)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	if !ok || resp == nil {
		return Token{}, domain.ErrAuthRequired
	}
	return Token{
		AccessToken: accessToken,
		UserID:      resp.Data.UserID,
		Login:       resp.Data.Login,
		Scopes:      resp.Data.Scopes,
		ExpiresIn:   time.Duration(resp.Data.ExpiresIn) * time.Second,
	}, nil
}

// Clear forgets the current token
func (a *Authenticator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = Token{}
}

type callbackResult struct {
	token string
	err   error
}

func (a *Authenticator) authorize(ctx context.Context, forceVerify bool) (string, error) {
	redirect, err := url.Parse(a.cfg.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid redirect uri: %w", err)
	}
	if redirect.Path == "" {
		redirect.Path = "/"
	}

	ln, err := a.listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}
	if redirect.Port() == "0" {
		redirect.Host = ln.Addr().String()
	}

	api, err := helix.NewClient(&helix.Options{
		ClientID:    a.cfg.ClientID,
		RedirectURI: redirect.String(),
	})
	if err != nil {
		ln.Close()
		return "", fmt.Errorf("failed to create helix client: %w", err)
	}

	state := uuid.NewString()
	authURL := api.GetAuthorizationURL(&helix.AuthorizationURLParams{
		ResponseType: "token",
		Scopes:       []string{followsScope},
		State:        state,
		ForceVerify:  forceVerify,
	})

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackRouter(redirect.Path, state, results, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.logger.Error("callback server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("waiting for twitch authorization", "redirect", redirect.String())
	if a.open != nil {
		if err := a.open(authURL); err != nil {
			a.logger.Warn("failed to open authorization page", "error", err, "url", authURL)
		}
	}

	select {
	case res := <-results:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(a.timeout):
		return "", ErrAuthTimeout
	}
}

// callbackRouter serves the redirect target and the token callback
func callbackRouter(redirectPath, state string, results chan<- callbackResult, logger *slog.Logger) http.Handler {
	deliver := func(res callbackResult) {
		select {
		case results <- res:
		default:
		}
	}

	callbackPath := path.Join(redirectPath, "callback")

	r := chi.NewRouter()
	r.Get(redirectPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			}
			logger.Warn("authorization error", "error", e, "description", q.Get("error_description"))
			deliver(callbackResult{err: fmt.Errorf("%w: %s", ErrAuthDenied, q.Get("error_description"))})
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, "Authorization failed. You can close this tab.")
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, forwardPage, callbackPath)
	})
	r.Get(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			logger.Warn("ignoring callback with unexpected state")
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		token := strings.TrimSpace(q.Get("access_token"))
		if token == "" {
			http.Error(w, "missing access_token", http.StatusBadRequest)
			return
		}
		deliver(callbackResult{token: token})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "Signed in. You can close this tab.")
	})
	return r
}

// forwardPage moves the fragment (#access_token=...) into a query string,
// since browsers never send fragments to the server.
const forwardPage = `<!doctype html>
<html>
<head><title>twitchpanel</title></head>
<body>
<p id="status">Completing sign in...</p>
<script>
const params = new URLSearchParams(window.location.hash.slice(1));
fetch(%q + "?" + params.toString())
  .then(r => r.text())
  .then(t => { document.getElementById("status").textContent = t; });
</script>
</body>
</html>
`
