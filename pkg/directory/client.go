// Package directory is a client for the account directory and player catalog API.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

const apiPrefix = "/api/v1"

// Config holds the client configuration.
type Config struct {
	BaseURL string        // e.g. "http://localhost:8080"
	Timeout time.Duration // per request when ctx has no deadline (default: 10s)
	Logger  *zap.Logger
}

// Client talks to the directory over HTTP.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// envelope mirrors the server response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// New creates a directory client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &fasthttp.Client{
			Name:                "hockeyctl",
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
		},
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// do performs a request and decodes the envelope data into result.
func (c *Client) do(ctx context.Context, method, path, token string, body, result interface{}) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeNetworkUnavailable, domain.ErrNetworkUnavailable.Message, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Debug("directory request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return domain.WrapError(domain.ErrCodeNetworkUnavailable, domain.ErrNetworkUnavailable.Message, err)
	}

	status := resp.StatusCode()
	raw := resp.Body()
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && status < 400 {
			return domain.WrapError(domain.ErrCodeServerError, domain.ErrServerError.Message, err)
		}
	}

	if status >= 400 {
		return statusError(status, env.Code, env.Error, token != "")
	}
	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return domain.WrapError(domain.ErrCodeServerError, domain.ErrServerError.Message, err)
		}
	}
	return nil
}

var taxonomy = map[string]*domain.Error{
	string(domain.ErrCodeInvalidCredentials): domain.ErrInvalidCredentials,
	string(domain.ErrCodeMissingField):       domain.ErrMissingField,
	string(domain.ErrCodeWeakPassword):       domain.ErrWeakPassword,
	string(domain.ErrCodeDuplicateEmail):     domain.ErrDuplicateEmail,
	string(domain.ErrCodeNotAuthenticated):   domain.ErrNotAuthenticated,
	string(domain.ErrCodePlayerNotFound):     domain.ErrPlayerNotFound,
	string(domain.ErrCodeServerError):        domain.ErrServerError,
}

// statusError maps an error response onto a domain error. The envelope code
// wins; the status decides when the code is missing or foreign.
func statusError(status int, code, message string, bearer bool) error {
	cause := fmt.Errorf("directory responded %d %s: %s", status, code, message)
	if known, ok := taxonomy[code]; ok {
		return domain.WrapError(known.Code, known.Message, cause)
	}

	switch {
	case status == fasthttp.StatusUnauthorized && bearer:
		return domain.WrapError(domain.ErrCodeNotAuthenticated, domain.ErrNotAuthenticated.Message, cause)
	case status == fasthttp.StatusUnauthorized:
		return domain.WrapError(domain.ErrCodeInvalidCredentials, domain.ErrInvalidCredentials.Message, cause)
	case status == fasthttp.StatusConflict:
		return domain.WrapError(domain.ErrCodeDuplicateEmail, domain.ErrDuplicateEmail.Message, cause)
	case status == fasthttp.StatusNotFound:
		return domain.WrapError(domain.ErrCodePlayerNotFound, domain.ErrPlayerNotFound.Message, cause)
	case status == fasthttp.StatusBadRequest:
		if message == "" {
			message = domain.ErrInvalidPayload.Message
		}
		return domain.WrapError(domain.ErrCodeInvalid, message, cause)
	default:
		return domain.WrapError(domain.ErrCodeServerError, domain.ErrServerError.Message, cause)
	}
}

// Health reports whether the directory answers its health probe.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, fasthttp.MethodGet, "/health", "", nil, nil)
}

// IsUnavailable reports whether err means the directory could not be reached.
func IsUnavailable(err error) bool {
	var dErr *domain.Error
	return errors.As(err, &dErr) && dErr.Code == domain.ErrCodeNetworkUnavailable
}
