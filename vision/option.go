package vision

import "go.uber.org/zap"

type Option func(*Config)

func WithBackend(b Backend) Option {
	return func(c *Config) {
		c.backend = b
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithMaxDimension downscales images whose longer side exceeds n pixels, 0 disables
func WithMaxDimension(n uint) Option {
	return func(c *Config) {
		c.maxDimension = n
	}
}

func WithPrompt(prompt string) Option {
	return func(c *Config) {
		c.prompt = prompt
	}
}
