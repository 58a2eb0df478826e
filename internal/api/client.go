package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
	"github.com/google/uuid"
)

const (
	// RequestTimeout bounds every API call. A timeout is surfaced to the
	// caller and never retried.
	RequestTimeout = 30 * time.Second

	basePath = "/api/v2"
)

// Client issues authenticated JSON calls to the resource API and owns the
// 401 refresh-and-retry protocol: at most one refresh and one retried call
// per logical request, after which the session is signed out.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     domain.TokenSource
}

func NewClient(baseURL string, tokens domain.TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   RequestTimeout,
			Transport: NewLoggingTransport(nil),
		},
		tokens: tokens,
	}
}

// Execute performs one logical API call and returns the raw response body.
// body, when non-nil, is marshalled as JSON.
func (c *Client) Execute(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	correlationID := uuid.New().String()

	// Bounded loop: attempt 0 is the original call, attempt 1 is the single
	// permitted retry after a token refresh.
	for attempt := 0; attempt <= 1; attempt++ {
		token, personal := c.currentToken()
		if token == "" {
			return nil, ErrUnauthenticated
		}

		status, respBody, err := c.issue(ctx, method, path, payload, token, correlationID)
		if err != nil {
			return nil, err
		}

		if status == http.StatusUnauthorized {
			if personal {
				// Personal tokens are never refreshed. A 401 means the
				// token was revoked externally.
				logger.Log("API: 401 on personal token, signing out")
				c.tokens.SignOut()
				return nil, ErrSessionExpired
			}

			if attempt >= 1 {
				logger.Log("API: 401 after refresh, signing out")
				c.tokens.SignOut()
				return nil, ErrSessionExpired
			}

			if !c.tokens.Refresh(ctx, true) {
				logger.Log("API: token refresh failed, signing out")
				c.tokens.SignOut()
				return nil, ErrSessionExpired
			}

			logger.Log("API: token refreshed, retrying %s %s", method, path)
			continue
		}

		if status < 200 || status > 299 {
			return nil, &RequestError{Status: status, Body: strings.TrimSpace(string(respBody))}
		}

		return respBody, nil
	}

	// Unreachable: the loop always returns on attempt 1.
	return nil, ErrSessionExpired
}

// currentToken returns the active bearer credential. A personal token takes
// precedence and is used exclusively.
func (c *Client) currentToken() (token string, personal bool) {
	if t := c.tokens.GetPersistentToken(); t != "" {
		return t, true
	}
	return c.tokens.GetAccessToken(), false
}

func (c *Client) issue(ctx context.Context, method, path string, payload []byte, token, correlationID string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return 0, nil, ErrTimeout
		}
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return os.IsTimeout(err)
}
