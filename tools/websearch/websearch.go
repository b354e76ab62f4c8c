// Package websearch turns a free text query into a short digest of web results
package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bububa/planthy/tools"
)

const (
	// DefaultMaxResults results kept in a digest
	DefaultMaxResults = 3
	// ToolName the name the orchestrator calls the searcher by
	ToolName = "search_plant_info"
	// ToolDescription tells the model when to search
	ToolDescription = "Searches the web for plant health and care information."
)

var (
	// ErrSearch the search provider failed
	ErrSearch = errors.New("search failed")
	// ErrEmptyQuery the query is blank
	ErrEmptyQuery = errors.New("empty search query")
)

// Result is a single search hit
type Result struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Provider fetches at most limit results for query, in ranking order
type Provider interface {
	Name() string
	Results(ctx context.Context, query string, limit int) ([]Result, error)
}

// Input for the search_plant_info tool
type Input struct {
	// Query to search for
	Query string `json:"query" jsonschema:"title=query,description=Search query about plant health or care." validate:"required"`
}

// Output of the search_plant_info tool
type Output struct {
	// Content newline separated title: body lines
	Content string `json:"content"`
}

func (o Output) String() string {
	return o.Content
}

type Config struct {
	tools.Config
	provider   Provider
	maxResults int
	logger     *zap.Logger
}

// Searcher is the web search adapter, safe for concurrent use
type Searcher struct {
	Config
}

func New(opts ...Option) (*Searcher, error) {
	ret := new(Searcher)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.provider == nil {
		return nil, errors.New("websearch: provider is required")
	}
	if ret.Title() == "" {
		ret.SetTitle(ToolName)
	}
	if ret.Description() == "" {
		ret.SetDescription(ToolDescription)
	}
	if ret.maxResults <= 0 {
		ret.maxResults = DefaultMaxResults
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	return ret, nil
}

// Search returns at most maxResults results joined as "title: body" lines in provider order.
// No results yields an empty string.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	startTime := time.Now()
	results, err := s.provider.Results(ctx, query, s.maxResults)
	if err != nil {
		s.logger.Warn("search failed", zap.String("provider", s.provider.Name()), zap.String("query", query), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrSearch, s.provider.Name(), err)
	}
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, r.Title+": "+r.Body)
	}
	s.logger.Debug("search done", zap.String("provider", s.provider.Name()), zap.String("query", query), zap.Int("results", len(lines)), zap.Duration("elapsed", time.Since(startTime)))
	return strings.Join(lines, "\n"), nil
}

// Run implements tools.Tool
func (s *Searcher) Run(ctx context.Context, in *Input) (*Output, error) {
	content, err := s.Search(ctx, in.Query)
	if err != nil {
		return nil, err
	}
	return &Output{Content: content}, nil
}
