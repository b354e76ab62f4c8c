// Package duckduckgo scrapes the DuckDuckGo HTML endpoint
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bububa/planthy/tools/websearch"
)

type Config struct {
	baseURL    string
	region     string
	userAgent  string
	limiter    *rate.Limiter
	httpClient *http.Client
}

type DuckDuckGo struct {
	Config
}

func New(opts ...Option) *DuckDuckGo {
	ret := new(DuckDuckGo)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

// Results implements websearch.Provider, ads are skipped
func (d *DuckDuckGo) Results(ctx context.Context, query string, limit int) ([]websearch.Result, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	doc, err := d.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	var (
		results []websearch.Result
		convErr error
	)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		title := strings.TrimSpace(s.Find(".result__a").First().Text())
		if title == "" {
			return true
		}
		snippet, err := s.Find(".result__snippet").First().Html()
		if err != nil {
			convErr = err
			return false
		}
		body, err := htmltomarkdown.ConvertString(snippet)
		if err != nil {
			convErr = err
			return false
		}
		results = append(results, websearch.Result{Title: title, Body: strings.TrimSpace(body)})
		return limit <= 0 || len(results) < limit
	})
	if convErr != nil {
		return nil, fmt.Errorf("parse results: %w", convErr)
	}
	return results, nil
}

func (d *DuckDuckGo) fetch(ctx context.Context, query string) (*goquery.Document, error) {
	values := url.Values{}
	values.Set("q", query)
	if d.region != "" {
		values.Set("kl", d.region)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", d.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from duckduckgo: %d", httpResp.StatusCode)
	}
	return goquery.NewDocumentFromReader(httpResp.Body)
}
