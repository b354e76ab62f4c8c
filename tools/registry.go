package tools

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/planthy/components"
)

// ErrUnknownTool the model asked for a tool outside the registry
var ErrUnknownTool = errors.New("unknown tool")

// Registry is the closed set of tools an orchestrator may call, fixed at construction
type Registry struct {
	tools map[string]AnonymousTool
	names []string
}

// NewRegistry rejects empty and duplicate names
func NewRegistry(list ...AnonymousTool) (*Registry, error) {
	ret := &Registry{
		tools: make(map[string]AnonymousTool, len(list)),
		names: make([]string, 0, len(list)),
	}
	for _, t := range list {
		name := t.Title()
		if name == "" {
			return nil, errors.New("tool name is required")
		}
		if _, found := ret.tools[name]; found {
			return nil, fmt.Errorf("duplicate tool %s", name)
		}
		ret.tools[name] = t
		ret.names = append(ret.names, name)
	}
	return ret, nil
}

// Get returns the tool registered as name
func (r *Registry) Get(name string) (AnonymousTool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// OpenAI returns function definitions for chat completion requests
func (r *Registry) OpenAI() []openai.Tool {
	list := make([]openai.Tool, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name]
		list = append(list, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return list
}

// Invoke dispatches call by name and returns its observation
func (r *Registry) Invoke(ctx context.Context, call components.ToolCall) (components.ToolCallback, error) {
	cb := components.ToolCallback{ID: call.ID, Name: call.Name}
	t, ok := r.tools[call.Name]
	if !ok {
		return cb, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}
	content, err := t.RunAnonymous(ctx, call.Arguments)
	if err != nil {
		return cb, fmt.Errorf("tool %s: %w", call.Name, err)
	}
	cb.Content = content
	return cb, nil
}
