// auth/auth.go
/* Package auth implements the session lifecycle around the token store: login writes both
tokens, logout invalidates the session server-side and erases them locally. */
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/deploymenttheory/go-menu-admin-client/httpclient"
	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"github.com/deploymenttheory/go-menu-admin-client/response"
	"github.com/deploymenttheory/go-menu-admin-client/tokenclaims"
	"github.com/deploymenttheory/go-menu-admin-client/tokenstore"
	"go.uber.org/zap"
)

const (
	LoginEndpoint  = "/auth"
	LogoutEndpoint = "/auth/logout"
)

// ErrEmptyCredentials is returned by Login when the username or password is empty.
var ErrEmptyCredentials = errors.New("username and password are required")

// ErrMissingAccessToken is returned when a login response carries no access token.
var ErrMissingAccessToken = errors.New("login response did not include an access token")

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionStatus describes the stored session without contacting the backend.
type SessionStatus struct {
	HasAccessToken  bool
	HasRefreshToken bool
	// Claims is set when the access token is a JWT.
	Claims *tokenclaims.Claims
}

// Service drives login and logout through the HTTP client.
type Service struct {
	client *httpclient.Client
	tokens *tokenstore.TokenStore
	log    logger.Logger
}

// NewService returns a Service that stores credentials in tokens. tokens should be the
// store the client was built with.
func NewService(client *httpclient.Client, tokens *tokenstore.TokenStore) *Service {
	return &Service{client: client, tokens: tokens, log: client.Logger}
}

// Login exchanges username and password for a token pair and stores both tokens.
// A rejected login is returned as a *response.APIError and leaves the store untouched.
func (s *Service) Login(ctx context.Context, username, password string) (httpclient.TokenPair, error) {
	if username == "" || password == "" {
		return httpclient.TokenPair{}, ErrEmptyCredentials
	}

	var pair httpclient.TokenPair
	_, err := s.client.DoUnauthenticated(ctx, http.MethodPost, LoginEndpoint,
		Credentials{Username: username, Password: password}, &pair)
	if err != nil {
		return httpclient.TokenPair{}, err
	}
	if pair.AccessToken == "" {
		return httpclient.TokenPair{}, ErrMissingAccessToken
	}

	if err := s.tokens.SetAccess(ctx, pair.AccessToken); err != nil {
		return httpclient.TokenPair{}, fmt.Errorf("store access token: %w", err)
	}
	if err := s.tokens.SetRefresh(ctx, pair.RefreshToken); err != nil {
		return httpclient.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	s.log.Info("Logged in", zap.String("username", username))
	return pair, nil
}

// Logout asks the backend to invalidate the session, then clears both tokens. The tokens are
// cleared even when the backend call fails; both errors are returned joined.
//
// The logout body carries the tokens themselves, so it is always built from the current pair:
// a session holding only a refresh token is refreshed first, and a 401 leads to one refresh and
// a resend with the new pair.
func (s *Service) Logout(ctx context.Context) error {
	remoteErr := s.invalidate(ctx)
	if remoteErr != nil {
		s.log.Warn("Server-side logout failed, clearing local session", zap.Error(remoteErr))
	}

	clearErr := s.tokens.Clear(ctx)
	if clearErr == nil {
		s.log.Info("Logged out")
	}
	return errors.Join(remoteErr, clearErr)
}

func (s *Service) invalidate(ctx context.Context) error {
	pair, err := s.currentPair(ctx)
	if err != nil {
		return err
	}
	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return nil
	}

	refreshed := false
	if pair.AccessToken == "" {
		if err := s.client.RefreshTokens(ctx); err != nil {
			return fmt.Errorf("refresh before logout: %w", err)
		}
		refreshed = true
		if pair, err = s.currentPair(ctx); err != nil {
			return err
		}
	}

	_, err = s.client.Post(httpclient.WithoutRecovery(ctx), LogoutEndpoint, nil, pair, nil)
	if response.IsUnauthorized(err) && !refreshed && pair.RefreshToken != "" {
		if refreshErr := s.client.RefreshTokens(ctx); refreshErr != nil {
			return fmt.Errorf("logout: %w", errors.Join(err, refreshErr))
		}
		if pair, err = s.currentPair(ctx); err != nil {
			return err
		}
		_, err = s.client.Post(httpclient.WithoutRecovery(ctx), LogoutEndpoint, nil, pair, nil)
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Service) currentPair(ctx context.Context) (httpclient.TokenPair, error) {
	access, err := s.tokens.Access(ctx)
	if err != nil {
		return httpclient.TokenPair{}, fmt.Errorf("read access token: %w", err)
	}
	refresh, err := s.tokens.Refresh(ctx)
	if err != nil {
		return httpclient.TokenPair{}, fmt.Errorf("read refresh token: %w", err)
	}
	return httpclient.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IsAuthenticated reports whether an access token is stored.
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	access, err := s.tokens.Access(ctx)
	if err != nil {
		return false, err
	}
	return access != "", nil
}

// Status reports which tokens are stored and, when the access token is a JWT, its claims.
func (s *Service) Status(ctx context.Context) (SessionStatus, error) {
	pair, err := s.currentPair(ctx)
	if err != nil {
		return SessionStatus{}, err
	}

	st := SessionStatus{HasAccessToken: pair.AccessToken != "", HasRefreshToken: pair.RefreshToken != ""}
	if st.HasAccessToken {
		if claims, err := tokenclaims.Inspect(pair.AccessToken); err == nil {
			st.Claims = &claims
		}
	}
	return st, nil
}
