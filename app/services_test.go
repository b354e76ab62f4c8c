package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bububa/planthy/config"
	"github.com/bububa/planthy/tools/plantimage"
	"github.com/bububa/planthy/tools/websearch"
	"github.com/bububa/planthy/tools/websearch/searxng"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Vision.Provider = config.ProviderOpenAI
	cfg.Vision.Model = "gpt-4o-mini"
	cfg.Vision.APIKey = "k"
	cfg.Agent.APIKey = "k"
	cfg.Server.UploadDir = t.TempDir()
	cfg.ApplyEnv(func(string) (string, bool) { return "", false })
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewServices(t *testing.T) {
	svc, err := NewServices(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, []string{plantimage.ToolName, websearch.ToolName}, svc.Registry.Names())
	assert.NotNil(t, svc.Orchestrator)
	assert.NotNil(t, svc.Shell)
	assert.Contains(t, svc.Orchestrator.SystemPrompt(), "analyze_plant_image")
}

func TestNewSearcher(t *testing.T) {
	cfg := testConfig(t).Search
	s, err := NewSearcher(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, websearch.ToolName, s.Title())

	cfg.Provider = config.SearchSearxNG
	cfg.BaseURL = "http://localhost:8888"
	_, err = NewSearcher(cfg, zap.NewNop())
	require.NoError(t, err)

	cfg.Provider = "bing"
	_, err = NewSearcher(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewSearcherSearxNGCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "science", r.URL.Query().Get("categories"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"query":"leaf mold","results":[{"title":"Leaf mold","content":"Lower humidity."}]}`)
	}))
	defer srv.Close()

	cfg := testConfig(t).Search
	cfg.Provider = config.SearchSearxNG
	cfg.BaseURL = srv.URL
	cfg.Category = searxng.ScienceCategory
	s, err := NewSearcher(cfg, zap.NewNop())
	require.NoError(t, err)
	got, err := s.Search(context.Background(), "leaf mold")
	require.NoError(t, err)
	assert.Equal(t, "Leaf mold: Lower humidity.", got)
}
