package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/twitchpanel/internal/twitch"
)

// authenticator runs the browser sign-in (consumer-defined interface)
type authenticator interface {
	Authenticate(ctx context.Context, renew bool) (twitch.Token, error)
	Clear()
}

// tokenSink receives the active token (the Helix client)
type tokenSink interface {
	SetAccessToken(token string)
}

// tokenStore persists the token between runs
type tokenStore interface {
	SaveToken(token string) error
	ClearToken() error
}

// AuthService signs the user in and out, keeping the API client, the
// persisted token and the session in step.
type AuthService struct {
	auth    authenticator
	client  tokenSink
	tokens  tokenStore
	session *SessionService
	logger  *slog.Logger
}

// NewAuthService creates an auth service. session may be nil outside the TUI.
func NewAuthService(auth authenticator, client tokenSink, tokens tokenStore, session *SessionService, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		auth:    auth,
		client:  client,
		tokens:  tokens,
		session: session,
		logger:  logger,
	}
}

// Login obtains a token, running the browser flow when renew is set or no
// token is stored. The new token is applied to the client and persisted.
func (s *AuthService) Login(ctx context.Context, renew bool) (twitch.Token, error) {
	tok, err := s.auth.Authenticate(ctx, renew)
	if err != nil {
		return twitch.Token{}, fmt.Errorf("sign in: %w", err)
	}

	if s.client != nil {
		s.client.SetAccessToken(tok.AccessToken)
	}
	if s.tokens != nil {
		if err := s.tokens.SaveToken(tok.AccessToken); err != nil {
			// The session still works; only the next run has to sign in again
			s.logger.Warn("failed to persist access token", "error", err)
		}
	}

	s.logger.Info("signed in", "login", tok.Login)
	return tok, nil
}

// Logout forgets the token everywhere and clears saved preferences
func (s *AuthService) Logout() error {
	s.auth.Clear()
	if s.client != nil {
		s.client.SetAccessToken("")
	}

	var errs []error
	if s.tokens != nil {
		if err := s.tokens.ClearToken(); err != nil {
			errs = append(errs, fmt.Errorf("clear token: %w", err))
		}
	}
	if s.session != nil {
		if err := s.session.Reset(); err != nil {
			errs = append(errs, fmt.Errorf("clear preferences: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.logger.Info("signed out")
	return nil
}
