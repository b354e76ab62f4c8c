// Package searxng queries a SearxNG instance through its JSON API
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bububa/planthy/tools/websearch"
)

type Category = string

const (
	GeneralCategory Category = "general"
	ScienceCategory Category = "science"
)

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// SearchResponse represents the entire response from the search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

type Config struct {
	language   string
	baseURL    string
	category   Category
	httpClient *http.Client
}

// SearxNG is a websearch.Provider backed by a SearxNG instance
type SearxNG struct {
	Config
}

func New(opts ...Option) *SearxNG {
	ret := new(SearxNG)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.category == "" {
		ret.category = GeneralCategory
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

func (s *SearxNG) Name() string {
	return "searxng"
}

// Results implements websearch.Provider
func (s *SearxNG) Results(ctx context.Context, query string, limit int) ([]websearch.Result, error) {
	items, err := s.fetchSearchResults(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	results := make([]websearch.Result, 0, len(items))
	for _, item := range items {
		results = append(results, websearch.Result{Title: item.Title, Body: item.Content})
	}
	return results, nil
}

// fetchSearchResults queries the search engine and returns the parsed result items
func (s *SearxNG) fetchSearchResults(ctx context.Context, query string) ([]SearchResultItem, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("categories", s.category)
	if s.language != "" {
		values.Set("language", s.language)
	}
	searchURL := fmt.Sprintf("%s/search?%s", strings.TrimRight(s.baseURL, "/"), values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying searxng: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from searxng: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	return searchResponse.Results, nil
}
