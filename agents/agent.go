// Package agents implements the reasoning orchestrator. It alternates model calls and
// tool invocations until the model answers without requesting a tool.
package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bububa/planthy/components"
	"github.com/bububa/planthy/components/systemprompt"
	"github.com/bububa/planthy/schema"
	"github.com/bububa/planthy/tools"
)

// ErrOrchestrator the reasoning loop failed
var ErrOrchestrator = errors.New("orchestrator failed")

// DefaultMaxSteps model round trips per conversation
const DefaultMaxSteps = 8

// ChatClient is satisfied by *openai.Client
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config represents the orchestrator configuration
type Config struct {
	// client chat completion client shared by every conversation
	client ChatClient
	// registry closed tool set the model may call
	registry *tools.Registry
	// systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	model                 string
	// temperature Temperature for response generation
	temperature float32
	// maxTokens Maximum number of tokens allowed in each response
	maxTokens int
	maxSteps  int
	name      string
	logger    *zap.Logger
}

// Orchestrator is safe for concurrent use, each Chat runs its own conversation
type Orchestrator struct {
	Config
	startHook func(context.Context, *Orchestrator, string)
	endHook   func(context.Context, *Orchestrator, string, string, *components.LLMResponse)
	errorHook func(context.Context, *Orchestrator, string, *components.LLMResponse, error)
}

// New returns an Orchestrator, client and registry are required
func New(options ...Option) (*Orchestrator, error) {
	ret := new(Orchestrator)
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.client == nil {
		return nil, errors.New("agents: client is required")
	}
	if ret.registry == nil {
		return nil, errors.New("agents: tool registry is required")
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = NewPlantDoctorPrompt(systemprompt.NewCurrentDateProvider("Current date", nil))
	}
	if ret.maxSteps <= 0 {
		ret.maxSteps = DefaultMaxSteps
	}
	if ret.name == "" {
		ret.name = "planthy"
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	return ret, nil
}

func (o Orchestrator) Name() string {
	return o.name
}

func (o *Orchestrator) SetStartHook(fn func(context.Context, *Orchestrator, string)) {
	o.startHook = fn
}

func (o *Orchestrator) SetEndHook(fn func(context.Context, *Orchestrator, string, string, *components.LLMResponse)) {
	o.endHook = fn
}

func (o *Orchestrator) SetErrorHook(fn func(context.Context, *Orchestrator, string, *components.LLMResponse, error)) {
	o.errorHook = fn
}

// SystemPrompt returns the system prompt
func (o *Orchestrator) SystemPrompt() string {
	return o.systemPromptGenerator.Generate()
}

// Chat runs a new conversation seeded with instruction and returns the final answer verbatim
func (o *Orchestrator) Chat(ctx context.Context, instruction string) (string, error) {
	if fn := o.startHook; fn != nil {
		fn(ctx, o, instruction)
	}
	apiResp := new(components.LLMResponse)
	answer, err := o.run(ctx, instruction, apiResp)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrOrchestrator, err)
		if fn := o.errorHook; fn != nil {
			fn(ctx, o, instruction, apiResp, err)
		}
		return "", err
	}
	if fn := o.endHook; fn != nil {
		fn(ctx, o, instruction, answer, apiResp)
	}
	return answer, nil
}

func (o *Orchestrator) run(ctx context.Context, instruction string, apiResp *components.LLMResponse) (string, error) {
	memory := components.NewMemory(0)
	turnID := memory.NewTurn()
	memory.NewMessage(components.UserRole, schema.NewString(instruction))
	logger := o.logger.With(zap.String("agent", o.name), zap.String("turn", turnID))
	for step := 1; step <= o.maxSteps; step++ {
		startTime := time.Now()
		res, err := o.client.CreateChatCompletion(ctx, o.request(memory))
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		stepResp := new(components.LLMResponse)
		stepResp.FromOpenAI(&res)
		apiResp.Merge(stepResp)
		if len(res.Choices) == 0 {
			return "", errors.New("model returned no choices")
		}
		reply := res.Choices[0].Message
		logger.Debug("model replied", zap.Int("step", step), zap.Int("tool_calls", len(reply.ToolCalls)), zap.Duration("elapsed", time.Since(startTime)))
		if len(reply.ToolCalls) == 0 {
			if strings.TrimSpace(reply.Content) == "" {
				return "", errors.New("model returned an empty answer")
			}
			logger.Info("answered", zap.Int("steps", step), zap.Int("messages", memory.MessageCount()))
			return reply.Content, nil
		}
		calls := components.ToolCallsFromOpenAI(reply.ToolCalls)
		memory.Append(components.NewToolCallsMessage(schema.NewString(reply.Content), calls))
		for _, call := range calls {
			cb, err := o.registry.Invoke(ctx, call)
			if err != nil {
				return "", err
			}
			logger.Debug("tool observed", zap.String("tool", call.Name), zap.Int("bytes", len(cb.Content)))
			memory.Append(components.NewToolCallbackMessage(cb))
		}
	}
	return "", fmt.Errorf("no final answer after %d steps", o.maxSteps)
}

func (o *Orchestrator) request(memory *components.Memory) openai.ChatCompletionRequest {
	history := memory.History()
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		Tools:       o.registry.OpenAI(),
		Messages:    make([]openai.ChatCompletionMessage, 0, len(history)+1),
	}
	sys := components.NewMessage(components.SystemRole, schema.NewString(o.SystemPrompt()))
	for _, msg := range append([]components.Message{*sys}, history...) {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		req.Messages = append(req.Messages, *v)
	}
	return req
}
