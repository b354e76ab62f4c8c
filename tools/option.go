package tools

import (
	"context"

	"go.uber.org/zap"
)

// Option configures the Config embedded in a tool
type Option func(c *Config)

// WithTitle sets the name the model calls the tool by
func WithTitle(title string) Option {
	return func(c *Config) {
		c.SetTitle(title)
	}
}

// WithDescription sets the text telling the model when to call the tool
func WithDescription(desc string) Option {
	return func(c *Config) {
		c.SetDescription(desc)
	}
}

func WithStartHook(fn func(context.Context, AnonymousTool, any)) Option {
	return func(c *Config) {
		c.SetStartHook(fn)
	}
}

func WithEndHook(fn func(context.Context, AnonymousTool, any, any)) Option {
	return func(c *Config) {
		c.SetEndHook(fn)
	}
}

func WithErrorHook(fn func(context.Context, AnonymousTool, any, error)) Option {
	return func(c *Config) {
		c.SetErrorHook(fn)
	}
}

// WithLogger logs every invocation. Hooks installed before it still run first.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		start, end, fail := c.StartHook(), c.EndHook(), c.ErrorHook()
		c.SetStartHook(func(ctx context.Context, t AnonymousTool, in any) {
			if start != nil {
				start(ctx, t, in)
			}
			l.Debug("tool started", zap.String("tool", t.Title()), zap.Any("input", in))
		})
		c.SetEndHook(func(ctx context.Context, t AnonymousTool, in any, out any) {
			if end != nil {
				end(ctx, t, in, out)
			}
			l.Info("tool finished", zap.String("tool", t.Title()))
		})
		c.SetErrorHook(func(ctx context.Context, t AnonymousTool, in any, err error) {
			if fail != nil {
				fail(ctx, t, in, err)
			}
			l.Warn("tool failed", zap.String("tool", t.Title()), zap.Error(err))
		})
	}
}
