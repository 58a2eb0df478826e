package domain

import "context"

// TokenSource supplies the current bearer credential. A persistent (personal)
// token takes precedence over an OAuth token pair and is never refreshed.
type TokenSource interface {
	// GetAccessToken returns the current OAuth access token, or "" if none.
	GetAccessToken() string

	// GetPersistentToken returns the personal API token, or "" if none.
	GetPersistentToken() string

	// Refresh attempts to renew the OAuth access token. It reports whether a
	// usable token is available afterwards. force bypasses expiry checks.
	Refresh(ctx context.Context, force bool) bool

	// SignOut invalidates all credentials and notifies subscribers.
	SignOut()

	// OnAuthChanged registers a listener for sign-in/sign-out events. The
	// returned Subscription must be closed when the listener is done.
	OnAuthChanged(listener func()) Subscription
}

// Subscription is a disposable registration handle.
type Subscription interface {
	Close()
}
