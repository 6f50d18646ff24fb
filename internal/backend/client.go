package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"veggi-storefront/internal/domain"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return nil
}

// Options configures a Client.
type Options struct {
	// APIBase is the common prefix, e.g. http://localhost:8000/api/v1.
	APIBase string
	// PaymentBase serves the payment hash and pay-confirmation endpoints.
	// Empty means APIBase.
	PaymentBase string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client talks to the Veggi REST backend.
type Client struct {
	apiBase     string
	paymentBase string
	http        *http.Client
	breaker     *gobreaker.CircuitBreaker[*response]
	logger      *zap.Logger
}

type response struct {
	status int
	body   []byte
	header http.Header
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	paymentBase := opts.PaymentBase
	if paymentBase == "" {
		paymentBase = opts.APIBase
	}

	breaker := gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        "veggi-backend",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("backend circuit breaker state change", zap.String("breaker", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	return &Client{
		apiBase:     strings.TrimRight(opts.APIBase, "/"),
		paymentBase: strings.TrimRight(paymentBase, "/"),
		http:        httpClient,
		breaker:     breaker,
		logger:      logger,
	}
}

// PaymentBase is the prefix of the payment endpoints, also used for the
// gateway notify URL.
func (c *Client) PaymentBase() string {
	return c.paymentBase
}

// Ping checks that the backend is reachable through the breaker.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, c.apiBase, "/products?page=1", "", nil)
	return err
}

func (c *Client) call(ctx context.Context, method, base, path, token string, in, out any) (*response, error) {
	res, err := c.do(ctx, method, base, path, token, in)
	if err != nil {
		return res, err
	}
	if out != nil && len(res.body) > 0 {
		if err := json.Unmarshal(res.body, out); err != nil {
			return res, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, base, path, token string, in any) (*response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}

	start := time.Now()
	res, err := c.breaker.Execute(func() (*response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		r := &response{status: resp.StatusCode, body: data, header: resp.Header}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return r, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		}
		return r, nil
	})
	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return res, err
	}
	return res, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return ""
}
