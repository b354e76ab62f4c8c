package components

import (
	openai "github.com/sashabaranov/go-openai"
)

// ToolCall is a tool invocation requested by the model
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallsToOpenAI converts tool calls to openai ToolCall list
func ToolCallsToOpenAI(src []ToolCall) []openai.ToolCall {
	list := make([]openai.ToolCall, 0, len(src))
	for _, v := range src {
		list = append(list, openai.ToolCall{
			ID:   v.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      v.Name,
				Arguments: v.Arguments,
			},
		})
	}
	return list
}

// ToolCallsFromOpenAI converts openai tool calls
func ToolCallsFromOpenAI(src []openai.ToolCall) []ToolCall {
	list := make([]ToolCall, 0, len(src))
	for _, v := range src {
		list = append(list, ToolCall{
			ID:        v.ID,
			Name:      v.Function.Name,
			Arguments: v.Function.Arguments,
		})
	}
	return list
}

// ToolCallback is the observed result of a ToolCall
type ToolCallback struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
}
