package client

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

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type BaseClient struct {
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	baseURL        string
}

type ClientConfig struct {
	BaseURL string
	// Timeout of zero leaves requests unbounded.
	Timeout        time.Duration
	BreakerEnabled bool
	Threshold      int
	BreakerTimeout time.Duration
	// HTTPClient overrides the default net/http client.
	HTTPClient HTTPClient
}

// Response is a completed exchange with the backend, whatever its status.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	c := &BaseClient{
		client:  httpClient,
		logger:  logger,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
	}

	if !config.BreakerEnabled {
		return c
	}

	threshold := uint32(config.Threshold)
	if threshold == 0 {
		threshold = 3
	}

	// Circuit breaker settings
	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	c.circuitBreaker = gobreaker.NewCircuitBreaker(breakerSettings)

	return c
}

// BaseURL returns the resource root every path is resolved against.
func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

// Do issues exactly one request. A non-nil error means no response was
// received; non-success statuses come back as a Response.
func (c *BaseClient) Do(ctx context.Context, method, path string, query url.Values, payload interface{}) (*Response, error) {
	if c.circuitBreaker == nil {
		return c.do(ctx, method, path, query, payload)
	}

	var response *Response
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		var doErr error
		response, doErr = c.do(ctx, method, path, query, payload)
		if doErr != nil {
			return nil, doErr
		}
		// Server side failures count against the breaker.
		if response.StatusCode >= http.StatusInternalServerError {
			return response, fmt.Errorf("%w: %d", errHTTPStatus, response.StatusCode)
		}
		return response, nil
	})

	if response != nil {
		return response, nil
	}
	return nil, err
}

func (c *BaseClient) do(ctx context.Context, method, path string, query url.Values, payload interface{}) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body failed: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("HTTP request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("Reading response body failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return nil, fmt.Errorf("reading response body failed: %w", err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_size", len(data)),
		zap.Duration("duration", time.Since(start)))

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
