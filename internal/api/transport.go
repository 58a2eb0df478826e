package api

import (
	"net/http"
	"time"

	"github.com/eliasnord/neonpane/internal/logger"
)

// LoggingTransport wraps an http.RoundTripper and records every request and
// response in the shared log buffer. Header and body contents are never
// logged, only the method, path, status and duration.
type LoggingTransport struct {
	Transport http.RoundTripper
}

func NewLoggingTransport(transport http.RoundTripper) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingTransport{
		Transport: transport,
	}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		logger.LogError("HTTP_REQUEST", req.Method+" "+req.URL.Path, err)
		return nil, err
	}

	logger.LogRequest(req.Method, req.URL.Path, resp.StatusCode, duration)
	return resp, nil
}
