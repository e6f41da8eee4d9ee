// Package oauth manages the Google OAuth credential: web flow, persistence
// through an injected TokenStore, and authenticated HTTP clients whose
// refreshed tokens are written back to the store.
package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	fitness "google.golang.org/api/fitness/v1"
	oauth2v2 "google.golang.org/api/oauth2/v2"
)

// Scopes requested during the consent flow.
var Scopes = []string{
	fitness.FitnessActivityReadScope,
	fitness.FitnessLocationReadScope,
	fitness.FitnessBodyReadScope,
	oauth2v2.UserinfoProfileScope,
	oauth2v2.UserinfoEmailScope,
}

// TokenStore is the credential load/save dependency (see shared.TokenStore).
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
	Clear() error
}

// Manager owns the oauth2 config and the stored credential.
// It is safe for concurrent use by multiple goroutines.
type Manager struct {
	cfg   *oauth2.Config
	store TokenStore
	mu    sync.Mutex
}

func NewManager(clientID, clientSecret, redirectURL string, store TokenStore) *Manager {
	return &Manager{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		store: store,
	}
}

// AuthURL builds the consent URL. Offline access plus a forced consent prompt
// so Google issues a refresh token even on re-authentication.
func (m *Manager) AuthURL(state string) string {
	return m.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades the callback code for a token and persists it.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange auth code: %w", err)
	}
	if err := m.store.Save(token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Authenticated reports whether a credential is stored.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.store.Load()
	return err == nil
}

// Logout drops the stored credential.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Clear()
}

// Client returns an HTTP client that attaches and auto-refreshes the stored
// token. Returns shared.ErrNoCredentials (wrapped) when the user has never
// authenticated.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	src := &persistingTokenSource{
		base:  m.cfg.TokenSource(ctx, token),
		store: m.store,
		last:  token,
	}
	return oauth2.NewClient(ctx, src), nil
}

// persistingTokenSource writes refreshed tokens back to the store so the next
// process start reuses them instead of burning another refresh.
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store TokenStore
	mu    sync.Mutex
	last  *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if s.last == nil || token.AccessToken != s.last.AccessToken {
		// Google does not rotate refresh tokens on refresh; keep the old one
		// if the new token came back without it.
		if token.RefreshToken == "" && s.last != nil {
			token.RefreshToken = s.last.RefreshToken
		}
		if err := s.store.Save(token); err != nil {
			slog.Warn("Failed to persist refreshed token", "error", err)
		}
		s.last = token
	}
	return token, nil
}
