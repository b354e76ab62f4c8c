package app

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*Config)

func WithUploadDir(dir string) Option {
	return func(c *Config) {
		c.uploadDir = dir
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(c *Config) {
		c.maxUploadBytes = n
	}
}

// WithMaxConcurrent bounds in-flight diagnoses
func WithMaxConcurrent(n int64) Option {
	return func(c *Config) {
		c.maxConcurrent = n
	}
}

// WithRequestTimeout bounds a whole diagnosis, 0 disables
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.requestTimeout = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithStateHook observes every state transition of every request
func WithStateHook(fn func(id string, s State)) Option {
	return func(c *Config) {
		c.stateHook = fn
	}
}
