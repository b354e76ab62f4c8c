package websearch

import (
	"go.uber.org/zap"

	"github.com/bububa/planthy/tools"
)

type Option func(*Config)

func WithProvider(p Provider) Option {
	return func(c *Config) {
		c.provider = p
	}
}

// WithMaxResults caps the digest, values below 1 fall back to DefaultMaxResults
func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithToolOptions applies title, description and hook options
func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}
