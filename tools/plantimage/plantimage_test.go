package plantimage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/planthy/components"
	"github.com/bububa/planthy/schema"
	"github.com/bububa/planthy/tools"
)

type analyzerFunc func(ctx context.Context, path string) (*schema.PlantHealthReport, error)

func (f analyzerFunc) Analyze(ctx context.Context, path string) (*schema.PlantHealthReport, error) {
	return f(ctx, path)
}

func TestToolInvoke(t *testing.T) {
	root := t.TempDir()
	var seen []string
	analyzer := analyzerFunc(func(_ context.Context, path string) (*schema.PlantHealthReport, error) {
		seen = append(seen, path)
		return &schema.PlantHealthReport{PlantType: "tomato", Condition: "diseased", Symptoms: "yellow spots", Confidence: 0.9}, nil
	})
	reg, err := tools.NewRegistry(tools.Anonymous[Input, schema.PlantHealthReport](New(analyzer, WithRoot(root))))
	require.NoError(t, err)

	defs := reg.OpenAI()
	require.Len(t, defs, 1)
	assert.Equal(t, ToolName, defs[0].Function.Name)
	assert.Equal(t, ToolDescription, defs[0].Function.Description)

	image := filepath.Join(root, "a.jpeg")
	cb, err := reg.Invoke(context.Background(), components.ToolCall{ID: "c1", Name: ToolName, Arguments: `{"image_path":"` + image + `"}`})
	require.NoError(t, err)
	assert.JSONEq(t, `{"plant_type":"tomato","condition":"diseased","symptoms":"yellow spots","confidence":0.9}`, cb.Content)
	assert.Equal(t, []string{image}, seen)
}

func TestToolRejectsPathsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	called := false
	tool := New(analyzerFunc(func(context.Context, string) (*schema.PlantHealthReport, error) {
		called = true
		return nil, nil
	}), WithRoot(root))
	for _, path := range []string{
		"/etc/passwd",
		filepath.Join(root, "..", "other.jpeg"),
		root,
	} {
		_, err := tool.Run(context.Background(), &Input{ImagePath: path})
		assert.ErrorIs(t, err, ErrOutsideRoot, path)
	}
	assert.False(t, called)
}
