package coingecko

import (
	"maps"
	"net/http"
	"net/url"
)

const baseURL = "https://api.coingecko.com/api/v3"

// DemoKeyHeader and ProKeyHeader carry the CoinGecko API key.
const (
	DemoKeyHeader = "x-cg-demo-api-key"
	ProKeyHeader  = "x-cg-pro-api-key"
)

// HTTPClient sends CoinGecko requests; *httpx.Client and *http.Client both fit.
//
//go:generate mockgen -package=coingecko_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the CoinGecko v3 API.
type Client struct {
	baseURL    string // e.g. https://pro-api.coingecko.com/api/v3 for pro keys
	httpClient HTTPClient
	header     http.Header // API key header lives here
	query      url.Values
}

// Option tweaks a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as the pro
// endpoint or a test server.
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

// WithAPIKey sends key in header, DemoKeyHeader when header is empty.
func WithAPIKey(key, header string) Option {
	return func(c *Client) {
		if key == "" {
			return
		}
		if header == "" {
			header = DemoKeyHeader
		}
		c.header.Set(header, key)
	}
}

// NewClient returns a client for the public API unless options say otherwise.
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
