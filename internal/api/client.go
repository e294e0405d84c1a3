package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"
)

// Client talks to the commerce REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker[*response]
	form       *schema.Encoder
	logger     *slog.Logger
}

// Config holds configuration for the API client
type Config struct {
	BaseURL string        // default: http://localhost:8000
	Timeout time.Duration // default: 30s

	// CircuitBreaker fails calls fast after repeated transport or 5xx
	// failures. It never retries.
	CircuitBreaker bool

	// HTTPClient overrides the tuned default client
	HTTPClient *http.Client

	Logger *slog.Logger
}

// New creates a new API client
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.Timeout)
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		form:       schema.NewEncoder(),
		logger:     cfg.Logger,
	}

	if cfg.CircuitBreaker {
		c.breaker = newBreaker(c.logger)
	}

	return c
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	path        string
	token       string
	query       url.Values
	body        []byte
	contentType string
}

type response struct {
	status      int
	contentType string
	body        []byte
	requestID   string
}

func (r *response) isJSON() bool {
	return strings.Contains(r.contentType, "application/json")
}

// err normalizes a failed response into an *Error.
func (r *response) err() *Error {
	e := &Error{StatusCode: r.status, RequestID: r.requestID}

	if r.isJSON() {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
		}
		if err := json.Unmarshal(r.body, &payload); err == nil && len(payload.Detail) > 0 && string(payload.Detail) != "null" {
			e.Detail = parseDetail(payload.Detail)
		}
	}
	if e.Detail == "" {
		e.Detail = strings.TrimSpace(string(r.body))
	}
	if e.Detail == "" {
		e.Detail = UnknownErrorMessage
	}

	return e
}

func jsonRequest(method, path, token string, payload any) (request, error) {
	r := request{method: method, path: path, token: token}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("marshal request: %w", err)
		}
		r.body = body
		r.contentType = "application/json"
	}
	return r, nil
}

// send performs a single round trip and reads the whole body.
func (c *Client) send(ctx context.Context, r request) (*response, error) {
	op := r.method + " " + r.path

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed", "op", op, "request_id", requestID, "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("api request",
		"op", op,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
		requestID:   requestID,
	}, nil
}

// execute runs send, through the circuit breaker when one is configured.
func (c *Client) execute(ctx context.Context, r request) (*response, error) {
	if c.breaker == nil {
		return c.send(ctx, r)
	}

	res, err := c.breaker.Execute(ctx, func(ctx context.Context) (*response, error) {
		res, err := c.send(ctx, r)
		if err != nil {
			return nil, err
		}
		if res.status >= http.StatusInternalServerError {
			return nil, res.err()
		}
		return res, nil
	})
	if err != nil {
		var apiErr *Error
		var te *TransportError
		if !errors.As(err, &apiErr) && !errors.As(err, &te) {
			// breaker rejected the call without sending it
			return nil, &TransportError{Op: r.method + " " + r.path, Err: err}
		}
		return nil, err
	}
	return res, nil
}

// call executes r and decodes a successful body into out.
func (c *Client) call(ctx context.Context, r request, out any) error {
	res, err := c.execute(ctx, r)
	if err != nil {
		return err
	}

	if res.status < 200 || res.status >= 300 {
		return res.err()
	}

	if out == nil || res.status == http.StatusNoContent || len(res.body) == 0 {
		return nil
	}

	if err := json.Unmarshal(res.body, out); err != nil {
		return &Error{
			StatusCode: res.status,
			Detail:     invalidJSONMessage,
			RequestID:  res.requestID,
			cause:      err,
		}
	}

	return nil
}
