package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/planthy/components"
	"github.com/bububa/planthy/schema"
)

type geminiModelFunc func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)

func (f geminiModelFunc) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return f(ctx, parts...)
}

func geminiReply(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates:    []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 7},
	}
}

func newGeminiExtractor(t *testing.T, fn geminiModelFunc) *Extractor {
	t.Helper()
	ext, err := New(WithBackend(&GeminiBackend{model: fn, name: "gemini-test"}))
	require.NoError(t, err)
	return ext
}

func TestGeminiBackend(t *testing.T) {
	var got []genai.Part
	ext := newGeminiExtractor(t, func(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
		got = parts
		return geminiReply(
			genai.Text(`{"plant_type":"basil","condition":"wilted",`),
			genai.Blob{MIMEType: "image/png", Data: []byte{1}},
			genai.Text(` "symptoms":"drooping leaves","confidence":0.6}`),
		), nil
	})
	report, err := ext.Analyze(context.Background(), writePNG(t, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, "basil", report.PlantType)
	assert.Equal(t, "wilted", report.Condition)
	assert.Equal(t, "drooping leaves", report.Symptoms)
	assert.InDelta(t, 0.6, report.Confidence, 1e-9)

	require.Len(t, got, 2)
	blob, ok := got[0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, genai.Text(Prompt), got[1])
}

func TestGeminiBackendUsage(t *testing.T) {
	backend := &GeminiBackend{name: "gemini-test", model: geminiModelFunc(func(context.Context, ...genai.Part) (*genai.GenerateContentResponse, error) {
		return geminiReply(genai.Text(`{"plant_type":"fern","condition":"healthy","symptoms":"none","confidence":1}`)), nil
	})}
	out := new(Reply)
	resp, err := backend.Extract(context.Background(), components.NewMessage(components.UserRole, schema.NewString(Prompt)), out)
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", resp.Model)
	require.NotNil(t, resp.Usage)
	assert.EqualValues(t, 12, resp.Usage.InputTokens)
	assert.EqualValues(t, 7, resp.Usage.OutputTokens)
	assert.NoError(t, backend.Close())
}

func TestGeminiBackendFailures(t *testing.T) {
	cases := map[string]struct {
		resp *genai.GenerateContentResponse
		err  error
		want error
	}{
		"call failed":   {err: errors.New("quota exceeded"), want: ErrExtraction},
		"no candidates": {resp: &genai.GenerateContentResponse{}, want: ErrExtraction},
		"blank text":    {resp: geminiReply(genai.Text("  \n")), want: ErrExtraction},
		"only blobs":    {resp: geminiReply(genai.Blob{MIMEType: "image/png"}), want: ErrExtraction},
		"not json":      {resp: geminiReply(genai.Text("the plant looks fine")), want: ErrSchemaParse},
		"missing field": {resp: geminiReply(genai.Text(`{"plant_type":"fern","condition":"healthy","confidence":0.4}`)), want: ErrSchemaParse},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ext := newGeminiExtractor(t, func(context.Context, ...genai.Part) (*genai.GenerateContentResponse, error) {
				return tc.resp, tc.err
			})
			report, err := ext.Analyze(context.Background(), writePNG(t, 8, 8))
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, report)
		})
	}
}

func TestGeminiText(t *testing.T) {
	assert.Empty(t, geminiText(nil))
	assert.Empty(t, geminiText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
	assert.Equal(t, `{"a":1}`, geminiText(geminiReply(genai.Text(" {\"a\""), genai.Text(":1} "))))
}
