package yahoo

import (
	"maps"
	"net/http"
	"net/url"
)

const baseURL = "https://query1.finance.yahoo.com"

// HTTPClient is the transport used for quote and screener calls.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Yahoo Finance quote and screener endpoints.
type Client struct {
	baseURL    string // query1 and query2 hosts serve the same API
	httpClient HTTPClient
	header     http.Header // carries the session cookie when a crumb is set
	query      url.Values  // carries the crumb
}

// Option configures a Client, either at construction or for one call.
type Option func(*Client)

// WithBaseURL switches hosts, e.g. to query2.finance.yahoo.com.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader adds header values to every request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithQuery adds query parameters to every request, e.g. lang or region.
func WithQuery(query url.Values) Option {
	return func(c *Client) {
		for key, values := range query {
			for _, value := range values {
				c.query.Add(key, value)
			}
		}
	}
}

// WithCrumb authenticates requests against the consent gated endpoints.
// Yahoo pairs the crumb with the session cookie it was issued for.
func WithCrumb(crumb, cookie string) Option {
	return func(c *Client) {
		if crumb != "" {
			c.query.Set("crumb", crumb)
		}
		if cookie != "" {
			c.header.Set("Cookie", cookie)
		}
	}
}

// NewClient returns an anonymous client for query1.finance.yahoo.com unless
// options say otherwise.
func NewClient(options ...Option) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// override copies the client so per-call options do not leak into c.
func (c *Client) override(opts []Option) *Client {
	var o = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      maps.Clone(c.query),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
