package duckduckgo

import (
	"net/http"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://html.duckduckgo.com/html/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAccept    = "text/html,application/xhtml+xml,application/xml;"
)

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

// WithRegion sets the kl parameter, e.g. us-en
func WithRegion(region string) Option {
	return func(c *Config) {
		c.region = region
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.userAgent = ua
	}
}

// WithRateLimit limits outgoing requests per second, 0 disables
func WithRateLimit(perSecond float64) Option {
	return func(c *Config) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}
