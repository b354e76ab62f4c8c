package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bububa/instructor-go/pkg/instructor"
	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/planthy/components"
	"github.com/bububa/planthy/config"
	"github.com/bububa/planthy/providers"
)

// Backend submits one multimodal message to a model and decodes the answer into out
type Backend interface {
	Extract(ctx context.Context, msg *components.Message, out *Reply) (*components.LLMResponse, error)
}

// BackendFunc adapts a function to Backend
type BackendFunc func(ctx context.Context, msg *components.Message, out *Reply) (*components.LLMResponse, error)

func (f BackendFunc) Extract(ctx context.Context, msg *components.Message, out *Reply) (*components.LLMResponse, error) {
	return f(ctx, msg, out)
}

// NewBackend builds the long-lived backend selected by cfg.Provider
func NewBackend(ctx context.Context, cfg config.VisionConfig) (Backend, error) {
	if cfg.Provider == config.ProviderGemini && cfg.BaseURL == "" {
		clt, err := providers.NewGemini(ctx, cfg.LLMConfig)
		if err != nil {
			return nil, err
		}
		return NewGeminiBackend(clt, cfg.LLMConfig), nil
	}
	clt, err := providers.NewInstructor(cfg.LLMConfig, cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}
	return NewInstructorBackend(clt, cfg.LLMConfig)
}

// InstructorBackend extracts through instructor-go JSON mode
type InstructorBackend struct {
	client      instructor.Instructor
	model       string
	temperature float32
	maxTokens   int
}

// NewInstructorBackend wraps an openai or anthropic instructor
func NewInstructorBackend(clt instructor.Instructor, cfg config.LLMConfig) (*InstructorBackend, error) {
	switch clt.(type) {
	case *instructor.InstructorOpenAI, *instructor.InstructorAnthropic:
	default:
		return nil, fmt.Errorf("unsupported instructor client %T", clt)
	}
	return &InstructorBackend{
		client:      clt,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (b *InstructorBackend) Extract(ctx context.Context, msg *components.Message, out *Reply) (*components.LLMResponse, error) {
	llmResp := new(components.LLMResponse)
	switch clt := b.client.(type) {
	case *instructor.InstructorOpenAI:
		chatReq := openai.ChatCompletionRequest{
			Model:       b.model,
			Temperature: b.temperature,
			MaxTokens:   b.maxTokens,
		}
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		chatReq.Messages = append(chatReq.Messages, *v)
		res, err := clt.CreateChatCompletion(ctx, chatReq, out)
		if err != nil {
			return nil, err
		}
		llmResp.FromOpenAI(&res)
	case *instructor.InstructorAnthropic:
		maxTokens := b.maxTokens
		if maxTokens == 0 {
			maxTokens = 1024
		}
		chatReq := anthropic.MessagesRequest{
			Model:       anthropic.Model(b.model),
			Temperature: &b.temperature,
			MaxTokens:   maxTokens,
		}
		v := new(anthropic.Message)
		msg.ToAnthropic(v)
		chatReq.Messages = append(chatReq.Messages, *v)
		res, err := clt.CreateMessages(ctx, chatReq, out)
		if err != nil {
			return nil, err
		}
		llmResp.FromAnthropic(&res)
	}
	return llmResp, nil
}

// GeminiModel is satisfied by *genai.GenerativeModel
type GeminiModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiBackend uses the native gemini API with a JSON response schema
type GeminiBackend struct {
	client *genai.Client
	model  GeminiModel
	name   string
}

// NewGeminiBackend configures a generative model constrained to the report shape
func NewGeminiBackend(clt *genai.Client, cfg config.LLMConfig) *GeminiBackend {
	model := clt.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"plant_type": {Type: genai.TypeString, Description: "Plant type (e.g. tomato or rose)"},
			"condition":  {Type: genai.TypeString, Description: "Condition of the plant (e.g. healthy or diseased)"},
			"symptoms":   {Type: genai.TypeString, Description: "Visible symptoms (e.g. yellow spots or wilting)"},
			"confidence": {Type: genai.TypeNumber, Description: "Confidence score (0.0 to 1.0)"},
		},
		Required: []string{"plant_type", "condition", "symptoms", "confidence"},
	}
	return &GeminiBackend{client: clt, model: model, name: cfg.Model}
}

func (b *GeminiBackend) Extract(ctx context.Context, msg *components.Message, out *Reply) (*components.LLMResponse, error) {
	resp, err := b.model.GenerateContent(ctx, msg.ToGemini()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	llmResp := new(components.LLMResponse)
	llmResp.FromGemini(b.name, resp)
	text := geminiText(resp)
	if text == "" {
		return llmResp, fmt.Errorf("%w: empty reply", ErrExtraction)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return llmResp, fmt.Errorf("%w: %w", ErrSchemaParse, err)
	}
	return llmResp, nil
}

// Close releases the gemini client
func (b *GeminiBackend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}
