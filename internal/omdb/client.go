package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// notFoundMessage is the provider error string that triggers the fallback lookup.
const notFoundMessage = "Movie not found!"

var (
	// ErrNotFound is returned when the provider reports it has no such title.
	ErrNotFound = errors.New("omdb: movie not found")
	// ErrNoMatch is returned for any other negative provider response.
	ErrNoMatch = errors.New("omdb: no match")
)

// Payload is the subset of the provider response the pipeline consumes.
// Absent string fields are nil.
type Payload struct {
	Title     *string `json:"Title"`
	Year      *string `json:"Year"`
	Director  *string `json:"Director"`
	Plot      *string `json:"Plot"`
	BoxOffice *string `json:"BoxOffice"`
	Response  string  `json:"Response"`
	Error     string  `json:"Error"`
}

// Client performs a single provider lookup.
type Client interface {
	Lookup(ctx context.Context, title string, year *int) (*Payload, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  logrus.FieldLogger
}

// NewHTTPClient constructs an HTTP-backed provider client. The timeout bounds
// each call end to end.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger logrus.FieldLogger) (*HTTPClient, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("omdb api key required")
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse omdb url: %q is not absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Lookup queries the provider by title and, when given, release year.
func (c *HTTPClient) Lookup(ctx context.Context, title string, year *int) (*Payload, error) {
	endpoint := *c.baseURL
	q := endpoint.Query()
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	if year != nil {
		q.Set("y", strconv.Itoa(*year))
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", time.Since(start), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{"status": resp.StatusCode, "title": title}).Warn("omdb: unexpected status")
		return nil, fmt.Errorf("omdb: upstream returned %d", resp.StatusCode)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}

	if !strings.EqualFold(payload.Response, "True") {
		if payload.Error == notFoundMessage {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, payload.Error)
	}
	return &payload, nil
}
