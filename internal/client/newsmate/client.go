// Package newsmate implements the remote side of a chat session over the
// NewsMate HTTP API and its websocket endpoint.
package newsmate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

const maxBodySize = 5 * 1024 * 1024

// DefaultTimeout bounds a single HTTP exchange at the socket level. The
// session core itself never times out a request.
const DefaultTimeout = 5 * time.Minute

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("newsmate request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// Config describes how to reach the API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to the NewsMate HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New builds a Client whose requests are logged through cfg.Logger.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &loggingRoundTripper{inner: http.DefaultTransport, logger: cfg.Logger},
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// FetchHistory returns the raw history payload; shape checks are left to the
// session normalizer.
func (c *Client) FetchHistory(ctx context.Context, sessionID string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/history/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, errors.Wrap(err, "fetch history")
	}
	return json.RawMessage(body), nil
}

// SendMessage posts text and decodes the reply.
func (c *Client) SendMessage(ctx context.Context, text, sessionID string) (*chat.SendResult, error) {
	payload, err := json.Marshal(chat.ChatRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return nil, errors.Wrap(err, "encode chat request")
	}

	body, err := c.do(ctx, http.MethodPost, "/api/chat", payload)
	if err != nil {
		return nil, errors.Wrap(err, "send message")
	}

	var out chat.SendResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "decode chat response")
	}
	return &out, nil
}

// ResetSession drops the server-side history of sessionID.
func (c *Client) ResetSession(ctx context.Context, sessionID string) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/reset/"+url.PathEscape(sessionID), nil); err != nil {
		return errors.Wrap(err, "reset session")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// loggingRoundTripper records every outbound call at debug level and every
// transport failure at error level.
type loggingRoundTripper struct {
	inner  http.RoundTripper
	logger zerolog.Logger
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.inner.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Error().Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", elapsed).
			Msg("request failed")
		return nil, err
	}

	l.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("request completed")
	return resp, nil
}
