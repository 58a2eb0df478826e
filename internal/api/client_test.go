package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/eliasnord/neonpane/internal/domain"
)

type fakeTokens struct {
	mu           sync.Mutex
	access       string
	personal     string
	refreshOK    bool
	refreshedTo  string
	refreshCalls int
	signOutCalls int
}

func (f *fakeTokens) GetAccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) GetPersistentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.personal
}

func (f *fakeTokens) Refresh(ctx context.Context, force bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshOK && f.refreshedTo != "" {
		f.access = f.refreshedTo
	}
	return f.refreshOK
}

func (f *fakeTokens) SignOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	f.access = ""
	f.personal = ""
}

func (f *fakeTokens) OnAuthChanged(listener func()) domain.Subscription {
	return noopSubscription{}
}

type noopSubscription struct{}

func (noopSubscription) Close() {}

func TestExecuteSuccess(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "tok-1"}
	client := NewClient(server.URL, tokens)

	raw, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if string(raw) != `{"ok":true}` {
		t.Errorf("Unexpected body: %s", raw)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Expected bearer header 'Bearer tok-1', got %q", gotAuth)
	}
}

func TestExecuteNoCredential(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", &fakeTokens{})

	_, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Expected ErrUnauthenticated, got %v", err)
	}
}

func TestExecuteRetryTerminationOnRepeated401(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "old", refreshOK: true, refreshedTo: "new"}
	client := NewClient(server.URL, tokens)

	_, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}

	if requests != 2 {
		t.Errorf("Expected exactly 2 requests (original + one retry), got %d", requests)
	}
	if tokens.refreshCalls != 1 {
		t.Errorf("Expected exactly 1 refresh attempt, got %d", tokens.refreshCalls)
	}
	if tokens.signOutCalls != 1 {
		t.Errorf("Expected sign-out to be invoked once, got %d", tokens.signOutCalls)
	}
}

func TestExecuteRecoversAfterRefresh(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"projects":[]}`))
	}))
	defer server.Close()

	tokens := &fakeTokens{access: "stale", refreshOK: true, refreshedTo: "fresh"}
	client := NewClient(server.URL, tokens)

	_, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if requests != 2 {
		t.Errorf("Expected 2 requests, got %d", requests)
	}
	if tokens.refreshCalls != 1 {
		t.Errorf("Expected 1 refresh, got %d", tokens.refreshCalls)
	}
	if tokens.signOutCalls != 0 {
		t.Errorf("Expected no sign-out on recovery, got %d", tokens.signOutCalls)
	}
}

func TestExecutePersonalTokenNeverRefreshed(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &fakeTokens{personal: "personal-token", access: "ignored", refreshOK: true}
	client := NewClient(server.URL, tokens)

	_, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}

	if requests != 1 {
		t.Errorf("Expected a single request for a revoked personal token, got %d", requests)
	}
	if tokens.refreshCalls != 0 {
		t.Errorf("Expected zero refresh attempts for personal token, got %d", tokens.refreshCalls)
	}
	if tokens.signOutCalls != 1 {
		t.Errorf("Expected one sign-out, got %d", tokens.signOutCalls)
	}
}

func TestExecutePersonalTokenTakesPrecedence(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tokens := &fakeTokens{personal: "personal-token", access: "oauth-token"}
	client := NewClient(server.URL, tokens)

	if _, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if gotAuth != "Bearer personal-token" {
		t.Errorf("Expected personal token to be used exclusively, got %q", gotAuth)
	}
}

func TestExecuteRequestFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{access: "tok"})

	_, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError, got %v", err)
	}
	if reqErr.Status != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", reqErr.Status)
	}
	if reqErr.Body != "upstream broke" {
		t.Errorf("Unexpected body: %q", reqErr.Body)
	}
}

func TestExecuteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, &fakeTokens{access: "tok"})
	client.httpClient.Timeout = 20 * time.Millisecond

	_, err := client.Execute(context.Background(), http.MethodGet, "/projects", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
}
