package benchmark

import (
	"net/http"
	"strings"
	"time"

	"github.com/chemiclast/rasorite/internal/logger"
)

// DefaultBaseURL is the developer analytics benchmark endpoint.
const DefaultBaseURL = "https://apis.roblox.com/developer-analytics-aggregations/v2/get-benchmarks"

const cookieName = ".ROBLOSECURITY"

// Client fetches benchmark series from the developer analytics API.
type Client struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
	logger     logger.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client authenticating with cookie, which may be the
// bare token or a full "<name>=<token>" pair.
func NewClient(cookie string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		cookie:  cookieHeader(cookie),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       logger.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func cookieHeader(cookie string) string {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" || strings.HasPrefix(cookie, cookieName+"=") {
		return cookie
	}
	return cookieName + "=" + cookie
}
