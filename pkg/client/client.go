// Package client provides the HTTP client for the placeholder image API.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for placeholder API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placeholder_requests_total",
		Help: "Total placeholder API requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "placeholder_request_duration_seconds",
		Help:    "Placeholder API request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placeholder_errors_total",
		Help: "Total placeholder API failures by class",
	}, []string{"class"})
)

// DefaultTimeout bounds a single request including the body read.
const DefaultTimeout = 30 * time.Second

// Config holds the client configuration.
type Config struct {
	// BaseURL is the image endpoint, e.g. https://host/placeholder.
	// Any query string it carries is replaced by the request parameters.
	BaseURL string

	// Timeout for a single request (default: 30s).
	Timeout time.Duration
}

// DefaultConfig returns the default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: DefaultTimeout,
	}
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Duration   time.Duration
}

// Client issues GET requests against the placeholder endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// New creates a new placeholder API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ErrInvalidConfig, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidConfig, base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("%w: base url has no host", ErrInvalidConfig)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		config:     cfg,
		logger:     log.With().Str("component", "placeholder-client").Logger(),
	}, nil
}

// URLFor returns the request URL for params, all values URL-encoded.
func (c *Client) URLFor(params url.Values) string {
	u := *c.baseURL
	u.RawQuery = params.Encode()
	return u.String()
}

// Fetch performs a synchronous GET with params and reads the whole body.
//
// A 200 response returns (resp, nil). Any other status returns the response
// together with a *FetchError so callers can log the status. Transport
// failures return (nil, *FetchError) with ErrorClassNetwork.
func (c *Client) Fetch(ctx context.Context, params url.Values) (*Response, error) {
	target := c.URLFor(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.logger.Debug().
		Str("url", target).
		Msg("Executing placeholder request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestDuration.Observe(time.Since(start).Seconds())
		return nil, c.transportError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		duration := time.Since(start)
		requestDuration.Observe(duration.Seconds())

		class := ClassifyStatus(resp.StatusCode)
		requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		errorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Debug().
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Dur("duration", duration).
			Msg("Placeholder request returned non-200 status")

		return &Response{
				StatusCode: resp.StatusCode,
				Header:     resp.Header,
				Duration:   duration,
			}, &FetchError{
				StatusCode: resp.StatusCode,
				ErrorClass: class,
				Message:    resp.Status,
			}
	}

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	requestDuration.Observe(duration.Seconds())
	if err != nil {
		return nil, c.transportError("read response body", err)
	}

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	c.logger.Debug().
		Int("status_code", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", duration).
		Msg("Placeholder request succeeded")

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
		Duration:   duration,
	}, nil
}

func (c *Client) transportError(msg string, err error) *FetchError {
	errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
	requestsTotal.WithLabelValues("network_error").Inc()

	c.logger.Debug().Err(err).Msg("Placeholder transport failure")

	return &FetchError{
		ErrorClass: ErrorClassNetwork,
		Message:    msg,
		Err:        err,
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetLogger replaces the component logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}
