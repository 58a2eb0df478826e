package auth

import (
	"context"
	"sync"
	"time"

	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
	"golang.org/x/oauth2"
)

// Manager implements domain.TokenSource. It holds either a personal API token
// or an OAuth access/refresh pair; exactly one is authoritative at a time.
// The manager is constructed explicitly and injected, never shared as a
// package global.
type Manager struct {
	mu        sync.RWMutex
	conf      *oauth2.Config
	token     *oauth2.Token
	personal  string
	listeners map[int]func()
	nextID    int
}

func NewManager(conf *oauth2.Config) *Manager {
	return &Manager{
		conf:      conf,
		listeners: make(map[int]func()),
	}
}

// SignInWithPersonalToken installs a long-lived personal token as the
// authoritative credential.
func (m *Manager) SignInWithPersonalToken(token string) {
	m.mu.Lock()
	m.personal = token
	m.token = nil
	m.mu.Unlock()

	logger.Log("Auth: Signed in with personal token")
	m.notify()
}

// SignInWithOAuth installs an OAuth token pair as the authoritative
// credential.
func (m *Manager) SignInWithOAuth(token *oauth2.Token) {
	m.mu.Lock()
	m.token = token
	m.personal = ""
	m.mu.Unlock()

	logger.Log("Auth: Signed in with OAuth token")
	m.notify()
}

func (m *Manager) GetAccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return ""
	}
	return m.token.AccessToken
}

func (m *Manager) GetPersistentToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.personal
}

// Refresh renews the OAuth access token through the configured endpoint.
// Personal tokens are never refreshed. Reports whether a usable access token
// is available afterwards.
func (m *Manager) Refresh(ctx context.Context, force bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.personal != "" {
		return false
	}
	if m.token == nil || m.token.RefreshToken == "" {
		return false
	}

	if !force && m.token.Valid() {
		return true
	}

	// Expire the copy so the token source is forced through the refresh
	// grant even when the access token has lifetime left.
	stale := *m.token
	stale.Expiry = time.Now().Add(-time.Minute)

	fresh, err := m.conf.TokenSource(ctx, &stale).Token()
	if err != nil {
		logger.LogError("TOKEN_REFRESH", "oauth", err)
		return false
	}
	if fresh.AccessToken == "" {
		return false
	}

	if fresh.RefreshToken == "" {
		fresh.RefreshToken = m.token.RefreshToken
	}
	m.token = fresh

	logger.Log("Auth: Access token refreshed")
	return true
}

// SignOut drops all credentials and notifies subscribers.
func (m *Manager) SignOut() {
	m.mu.Lock()
	hadCredential := m.token != nil || m.personal != ""
	m.token = nil
	m.personal = ""
	m.mu.Unlock()

	if hadCredential {
		logger.Log("Auth: Signed out")
		m.notify()
	}
}

// Authenticated reports whether any credential is present.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != nil || m.personal != ""
}

func (m *Manager) OnAuthChanged(listener func()) domain.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = listener

	return &subscription{manager: m, id: id}
}

func (m *Manager) notify() {
	m.mu.RLock()
	listeners := make([]func(), 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l()
	}
}

type subscription struct {
	manager *Manager
	id      int
	once    sync.Once
}

func (s *subscription) Close() {
	s.once.Do(func() {
		s.manager.mu.Lock()
		delete(s.manager.listeners, s.id)
		s.manager.mu.Unlock()
	})
}
