package agents

import (
	"go.uber.org/zap"

	"github.com/bububa/planthy/components/systemprompt"
	"github.com/bububa/planthy/tools"
)

type Option func(c *Config)

func WithClient(clt ChatClient) Option {
	return func(c *Config) {
		c.client = clt
	}
}

func WithRegistry(r *tools.Registry) Option {
	return func(c *Config) {
		c.registry = r
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

// WithMaxSteps bounds model round trips per conversation
func WithMaxSteps(n int) Option {
	return func(c *Config) {
		c.maxSteps = n
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}
