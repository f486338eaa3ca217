package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Schwab OAuth endpoints.
const (
	DefaultAuthURL  = "https://api.schwabapi.com/v1/oauth/authorize"
	DefaultTokenURL = "https://api.schwabapi.com/v1/oauth/token"
)

// Config holds the OAuth application credentials.
type Config struct {
	AppKey      string
	AppSecret   string
	RedirectURL string
	AuthURL     string
	TokenURL    string
	// Interactive allows Token to fall through to the browser authorization
	// flow when both the cached token and the refresh grant fail. Leave it
	// off for unattended runs, which should surface ErrNoToken instead.
	Interactive bool
}

// Manager implements the token fallback chain: a valid cached token is used
// as is, an expired one is refreshed, and when the refresh grant is rejected
// too the only way forward is a full re-authorization. Safe for concurrent
// use.
type Manager struct {
	cfg    Config
	store  *Store
	http   *http.Client
	logger *zap.Logger

	mu      sync.Mutex
	current TokenData
	// rejected is set when the API refused the current token; it forces the
	// next Token call past the stored copy and into the refresh grant.
	rejected bool
}

// NewManager creates a token manager backed by the given store.
func NewManager(cfg Config, store *Store, logger *zap.Logger) *Manager {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Token returns a usable access token, walking the fallback chain as needed.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Valid() && !m.rejected {
		return m.current.AccessToken, nil
	}

	stored, err := m.store.Load()
	if err == nil && stored.Valid() && !m.rejected {
		m.current = stored
		return m.current.AccessToken, nil
	}
	if err != nil && !errors.Is(err, ErrNoToken) {
		return "", err
	}

	if stored.RefreshToken != "" {
		refreshed, rerr := m.refresh(ctx, stored.RefreshToken)
		if rerr == nil {
			m.current = refreshed
			m.rejected = false
			return m.current.AccessToken, m.store.Save(refreshed)
		}
		m.logger.Warn("token refresh failed", zap.Error(rerr))
	}

	if !m.cfg.Interactive {
		return "", ErrNoToken
	}
	fresh, err := m.authorize(ctx)
	if err != nil {
		return "", err
	}
	m.current = fresh
	m.rejected = false
	return m.current.AccessToken, m.store.Save(fresh)
}

// Invalidate marks the current token as rejected so the next Token call goes
// through the refresh chain again.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = true
}

// Authorize runs the interactive browser flow regardless of any stored
// credentials and persists the result. Used by the login command.
func (m *Manager) Authorize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh, err := m.authorize(ctx)
	if err != nil {
		return err
	}
	m.current = fresh
	m.rejected = false
	return m.store.Save(fresh)
}

// authorize drives the full OAuth code flow: open the consent page, catch the
// redirect on a local listener, exchange the code. Caller holds the lock.
func (m *Manager) authorize(ctx context.Context) (TokenData, error) {
	state := uuid.NewString()

	q := url.Values{}
	q.Set("client_id", m.cfg.AppKey)
	q.Set("redirect_uri", m.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("state", state)
	consentURL := m.cfg.AuthURL + "?" + q.Encode()

	srv, err := newCallbackServer(m.cfg.RedirectURL, state)
	if err != nil {
		return TokenData{}, err
	}
	defer srv.Close()

	if err := openBrowser(consentURL); err != nil {
		m.logger.Info("open this URL to authorize", zap.String("url", consentURL))
	}

	code, err := srv.WaitForCode(ctx)
	if err != nil {
		return TokenData{}, fmt.Errorf("waiting for authorization: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", m.cfg.RedirectURL)
	return m.exchange(ctx, form)
}

// refresh trades a refresh token for a new access token.
func (m *Manager) refresh(ctx context.Context, refreshToken string) (TokenData, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return m.exchange(ctx, form)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func (m *Manager) exchange(ctx context.Context, form url.Values) (TokenData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenData{}, err
	}
	req.SetBasicAuth(m.cfg.AppKey, m.cfg.AppSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		return TokenData{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TokenData{}, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return TokenData{}, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return TokenData{}, fmt.Errorf("token endpoint returned no access token")
	}
	return TokenData{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
