package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrEmptyPayload is returned when the server reports success but sends no data
// to a caller that needs it.
var ErrEmptyPayload = errors.New("api: success response without data")

// TokenSource yields the bearer token for a request, or "" for none.
type TokenSource func() string

// Client is the transport shared by the auth and todo clients.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	token   TokenSource
	log     *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The caller's client is
// never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client rooted at baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: 30 * time.Second,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	hc := *c.http
	hc.Timeout = c.timeout
	c.http = &hc
	return c
}

// SetTokenSource installs the function used for Authorization headers.
// The auth client owns the token, so it wires itself in after construction.
func (c *Client) SetTokenSource(ts TokenSource) { c.token = ts }

// Do sends one request and decodes the enveloped response. A non-2xx status
// or success=false comes back as *Error.
func Do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (*model.Envelope[T], error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := c.log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
	)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	log = log.With(zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	var env model.Envelope[T]
	decodeErr := json.Unmarshal(raw, &env)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !ok {
		apiErr := &Error{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Reason()
		}
		log.Warn("request rejected", zap.String("reason", apiErr.Message))
		return nil, apiErr
	}
	if decodeErr != nil {
		log.Warn("undecodable response", zap.Error(decodeErr))
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		log.Warn("request unsuccessful", zap.String("reason", env.Reason()))
		return nil, &Error{Status: resp.StatusCode, Message: env.Reason()}
	}

	log.Debug("request ok")
	return &env, nil
}

// Payload unwraps env.Data, failing with ErrEmptyPayload when it is absent.
func Payload[T any](env *model.Envelope[T]) (*T, error) {
	if env == nil || env.Data == nil {
		return nil, ErrEmptyPayload
	}
	return env.Data, nil
}
