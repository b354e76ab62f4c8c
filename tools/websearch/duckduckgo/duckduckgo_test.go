package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/planthy/tools/websearch"
)

func resultHTML(title, snippet string, ad bool) string {
	class := "result results_links web-result"
	if ad {
		class += " result--ad"
	}
	return fmt.Sprintf(`<div class="%s"><h2 class="result__title"><a class="result__a" href="https://example.com">%s</a></h2><a class="result__snippet" href="https://example.com">%s</a></div>`, class, title, snippet)
}

func startServer(t *testing.T, status int, results ...string) (*httptest.Server, *[]string) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		fmt.Fprintf(w, `<html><body><div id="links">%s</div></body></html>`, strings.Join(results, ""))
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestResults(t *testing.T) {
	srv, queries := startServer(t, http.StatusOK,
		resultHTML("Sponsored fertilizer", "Buy now", true),
		resultHTML("Tomato leaf spot", "Early <b>blight</b> spreads fast", false),
		resultHTML("Septoria", "Remove infected leaves", false),
	)
	ddg := New(WithBaseURL(srv.URL + "/html/"))
	results, err := ddg.Results(context.Background(), "tomato leaf spots", 10)
	require.NoError(t, err)
	assert.Equal(t, []websearch.Result{
		{Title: "Tomato leaf spot", Body: "Early **blight** spreads fast"},
		{Title: "Septoria", Body: "Remove infected leaves"},
	}, results)
	assert.Equal(t, []string{"tomato leaf spots"}, *queries)
}

func TestResultsLimit(t *testing.T) {
	pages := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		pages = append(pages, resultHTML(fmt.Sprintf("Title %d", i), fmt.Sprintf("Body %d", i), false))
	}
	srv, _ := startServer(t, http.StatusOK, pages...)
	s, err := websearch.New(websearch.WithProvider(New(WithBaseURL(srv.URL))))
	require.NoError(t, err)
	digest, err := s.Search(context.Background(), "rose care")
	require.NoError(t, err)
	assert.Equal(t, "Title 1: Body 1\nTitle 2: Body 2\nTitle 3: Body 3", digest)
}

func TestResultsEmpty(t *testing.T) {
	srv, _ := startServer(t, http.StatusOK)
	results, err := New(WithBaseURL(srv.URL)).Results(context.Background(), "obscure", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResultsHTTPError(t *testing.T) {
	srv, _ := startServer(t, http.StatusServiceUnavailable)
	s, err := websearch.New(websearch.WithProvider(New(WithBaseURL(srv.URL), WithRateLimit(100))))
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "rose")
	assert.ErrorIs(t, err, websearch.ErrSearch)
}
