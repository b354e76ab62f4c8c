package app

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bububa/planthy/agents"
	"github.com/bububa/planthy/components/systemprompt"
	"github.com/bububa/planthy/config"
	"github.com/bububa/planthy/providers"
	"github.com/bububa/planthy/schema"
	"github.com/bububa/planthy/tools"
	"github.com/bububa/planthy/tools/plantimage"
	"github.com/bububa/planthy/tools/websearch"
	"github.com/bububa/planthy/tools/websearch/duckduckgo"
	"github.com/bububa/planthy/tools/websearch/searxng"
	"github.com/bububa/planthy/vision"
)

// Services holds the long-lived components built once at startup
type Services struct {
	Extractor    *vision.Extractor
	Searcher     *websearch.Searcher
	Registry     *tools.Registry
	Orchestrator *agents.Orchestrator
	Shell        *Shell
}

// NewServices wires every component from a validated configuration
func NewServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	backend, err := vision.NewBackend(ctx, cfg.Vision)
	if err != nil {
		return nil, err
	}
	extractor, err := vision.New(
		vision.WithBackend(backend),
		vision.WithMaxDimension(cfg.Vision.MaxDimension),
		vision.WithLogger(logger.Named("vision")),
	)
	if err != nil {
		return nil, err
	}
	ret := &Services{Extractor: extractor}
	toolLogger := tools.WithLogger(logger.Named("tools"))
	if ret.Searcher, err = NewSearcher(cfg.Search, logger, websearch.WithToolOptions(toolLogger)); err != nil {
		ret.Close()
		return nil, err
	}
	imageTool := plantimage.New(extractor,
		plantimage.WithRoot(cfg.Server.UploadDir),
		plantimage.WithToolOptions(toolLogger),
	)
	if ret.Registry, err = tools.NewRegistry(
		tools.Anonymous[plantimage.Input, schema.PlantHealthReport](imageTool),
		tools.Anonymous[websearch.Input, websearch.Output](ret.Searcher),
	); err != nil {
		ret.Close()
		return nil, err
	}
	if ret.Orchestrator, err = agents.New(
		agents.WithClient(providers.NewOpenAI(cfg.Agent.LLMConfig)),
		agents.WithRegistry(ret.Registry),
		agents.WithSystemPromptGenerator(agents.NewPlantDoctorPrompt(systemprompt.NewCurrentDateProvider("Current date", nil))),
		agents.WithModel(cfg.Agent.Model),
		agents.WithTemperature(cfg.Agent.Temperature),
		agents.WithMaxTokens(cfg.Agent.MaxTokens),
		agents.WithMaxSteps(cfg.Agent.MaxSteps),
		agents.WithLogger(logger.Named("agent")),
	); err != nil {
		ret.Close()
		return nil, err
	}
	if ret.Shell, err = New(ret.Orchestrator,
		WithUploadDir(cfg.Server.UploadDir),
		WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		WithMaxConcurrent(cfg.Server.MaxConcurrent),
		WithRequestTimeout(cfg.Server.RequestTimeout),
		WithLogger(logger.Named("app")),
	); err != nil {
		ret.Close()
		return nil, err
	}
	return ret, nil
}

// NewSearcher builds the web search adapter for the configured provider
func NewSearcher(cfg config.SearchConfig, logger *zap.Logger, opts ...websearch.Option) (*websearch.Searcher, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	var provider websearch.Provider
	switch cfg.Provider {
	case config.SearchSearxNG:
		provider = searxng.New(
			searxng.WithBaseURL(cfg.BaseURL),
			searxng.WithLanguage(cfg.Language),
			searxng.WithCategory(cfg.Category),
			searxng.WithHttpClient(httpClient),
		)
	case config.SearchDuckDuckGo:
		ddgOpts := []duckduckgo.Option{
			duckduckgo.WithRegion(cfg.Language),
			duckduckgo.WithRateLimit(cfg.RateLimit),
			duckduckgo.WithHttpClient(httpClient),
		}
		if cfg.BaseURL != "" {
			ddgOpts = append(ddgOpts, duckduckgo.WithBaseURL(cfg.BaseURL))
		}
		provider = duckduckgo.New(ddgOpts...)
	default:
		return nil, errors.New("unsupported search provider " + cfg.Provider)
	}
	return websearch.New(append([]websearch.Option{
		websearch.WithProvider(provider),
		websearch.WithMaxResults(cfg.MaxResults),
		websearch.WithLogger(logger.Named("search")),
	}, opts...)...)
}

// Close releases model clients
func (s *Services) Close() error {
	if s.Extractor == nil {
		return nil
	}
	return s.Extractor.Close()
}
