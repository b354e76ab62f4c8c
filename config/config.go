// Package config loads and validates planthy configuration.
//
// Values come from an optional YAML file layered over Default(). API keys left
// empty fall back to the provider environment variable (GEMINI_API_KEY,
// OPENAI_API_KEY, ANTHROPIC_API_KEY).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "PLANTHY_CONFIG"

// Provider is a hosted model vendor
type Provider = string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// SearchProvider is a web search backend
type SearchProvider = string

const (
	SearchDuckDuckGo SearchProvider = "duckduckgo"
	SearchSearxNG    SearchProvider = "searxng"
)

// DefaultModel is used for both image analysis and reasoning
const DefaultModel = "gemini-2.0-flash"

// DefaultBaseURLs OpenAI compatible endpoints per provider
var DefaultBaseURLs = map[Provider]string{
	ProviderGemini: "https://generativelanguage.googleapis.com/v1beta/openai",
	ProviderOpenAI: "https://api.openai.com/v1",
}

var apiKeyEnvs = map[Provider]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Config is the application configuration
type Config struct {
	Vision VisionConfig `yaml:"vision"`
	Agent  AgentConfig  `yaml:"agent"`
	Search SearchConfig `yaml:"search"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// LLMConfig describes a hosted model endpoint
type LLMConfig struct {
	Provider    Provider `yaml:"provider" validate:"required,oneof=gemini openai anthropic"`
	Model       string   `yaml:"model" validate:"required"`
	APIKey      string   `yaml:"api_key" validate:"required"`
	BaseURL     string   `yaml:"base_url" validate:"omitempty,url"`
	Temperature float32  `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int      `yaml:"max_tokens" validate:"gte=0"`
}

// VisionConfig configures the structured image extractor
type VisionConfig struct {
	LLMConfig `yaml:",inline"`
	// MaxDimension longer image side above which images are downscaled, 0 disables
	MaxDimension uint `yaml:"max_dimension"`
	// MaxAttempts model calls per analysis
	MaxAttempts int `yaml:"max_attempts" validate:"gte=1"`
}

// AgentConfig configures the reasoning orchestrator, the endpoint must speak the OpenAI chat API
type AgentConfig struct {
	LLMConfig `yaml:",inline"`
	// MaxSteps model round trips per conversation
	MaxSteps int `yaml:"max_steps" validate:"gte=1"`
}

// SearchConfig configures the web search adapter
type SearchConfig struct {
	Provider   SearchProvider `yaml:"provider" validate:"required,oneof=duckduckgo searxng"`
	BaseURL    string         `yaml:"base_url" validate:"required_if=Provider searxng,omitempty,url"`
	Language   string         `yaml:"language"`
	MaxResults int            `yaml:"max_results" validate:"gte=1"`
	Timeout    time.Duration  `yaml:"timeout" validate:"gte=0"`
	// RateLimit requests per second sent to the provider, 0 disables
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
	// Category searxng result category, general when empty
	Category string `yaml:"category" validate:"omitempty,oneof=general science"`
}

// ServerConfig configures the application shell and its HTTP surface
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	UploadDir      string        `yaml:"upload_dir" validate:"required"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" validate:"gt=0"`
	MaxConcurrent  int64         `yaml:"max_concurrent" validate:"gte=1"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
}

// LogConfig configures zap
type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file overrides a value
func Default() *Config {
	return &Config{
		Vision: VisionConfig{
			LLMConfig: LLMConfig{
				Provider:    ProviderGemini,
				Model:       DefaultModel,
				Temperature: 0.2,
				MaxTokens:   1024,
			},
			MaxDimension: 1536,
			MaxAttempts:  1,
		},
		Agent: AgentConfig{
			LLMConfig: LLMConfig{
				Provider:    ProviderGemini,
				Model:       DefaultModel,
				Temperature: 0.5,
				MaxTokens:   2048,
			},
			MaxSteps: 8,
		},
		Search: SearchConfig{
			Provider:   SearchDuckDuckGo,
			MaxResults: 3,
			Timeout:    15 * time.Second,
			RateLimit:  1,
		},
		Server: ServerConfig{
			Addr:           ":7860",
			UploadDir:      filepath.Join(os.TempDir(), "planthy"),
			MaxUploadBytes: 10 << 20,
			MaxConcurrent:  4,
			RequestTimeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over Default(), applies environment fallbacks and validates.
// An empty path falls back to $PLANTHY_CONFIG, and to defaults only when that is unset too.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.Decode(bs); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays YAML content onto c, unknown keys are rejected
func (c *Config) Decode(bs []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv fills empty API keys and base urls from the environment
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, llm := range []*LLMConfig{&c.Vision.LLMConfig, &c.Agent.LLMConfig} {
		if llm.APIKey == "" {
			if v, ok := lookup(apiKeyEnvs[llm.Provider]); ok {
				llm.APIKey = v
			}
		}
	}
	if c.Agent.BaseURL == "" {
		c.Agent.BaseURL = DefaultBaseURLs[c.Agent.Provider]
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks c, the first failing field is reported by its yaml path
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return fmt.Errorf("invalid config: %s failed on %s", errs[0].Namespace(), errs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Agent.Provider == ProviderAnthropic {
		return errors.New("invalid config: agent.provider must expose an OpenAI compatible chat API (gemini or openai)")
	}
	return nil
}
