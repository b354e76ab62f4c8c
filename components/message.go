package components

import (
	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/planthy/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message Represents a message in the chat history.
type Message struct {
	content schema.Schema
	// role is the role of the message sender (e.g., 'user', 'system', 'tool')
	role MessageRole
	// turnID is Unique identifier for the turn this message belongs to.
	turnID string
	// toolCalls tool invocations requested by the assistant
	toolCalls []ToolCall
	// callback is set on tool role messages
	callback *ToolCallback
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// NewToolCallsMessage returns an assistant message requesting tool invocations
func NewToolCallsMessage(content schema.Schema, calls []ToolCall) *Message {
	return &Message{
		role:      AssistantRole,
		content:   content,
		toolCalls: calls,
	}
}

// NewToolCallbackMessage returns a tool message carrying a tool observation
func NewToolCallbackMessage(cb ToolCallback) *Message {
	return &Message{
		role:     ToolRole,
		content:  schema.NewString(cb.Content),
		callback: &cb,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// StringifiedContent returns message content as plain text
func (m Message) StringifiedContent() string {
	return schema.Stringify(m.content)
}

// Attachement returns message attachement
func (m Message) Attachement() *schema.Attachement {
	if m.content == nil {
		return nil
	}
	return m.content.Attachement()
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// ToolCalls returns tool invocations requested by the assistant
func (m Message) ToolCalls() []ToolCall {
	return m.toolCalls
}

// Callback returns the tool observation of a tool message
func (m Message) Callback() *ToolCallback {
	return m.callback
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	switch {
	case m.callback != nil:
		dist.Content = m.callback.Content
		dist.ToolCallID = m.callback.ID
		dist.Name = m.callback.Name
	case len(m.toolCalls) > 0:
		dist.Content = m.StringifiedContent()
		dist.ToolCalls = ToolCallsToOpenAI(m.toolCalls)
	case m.Attachement().HasImages():
		urls := m.Attachement().URLs()
		dist.MultiContent = make([]openai.ChatMessagePart, 0, len(urls)+1)
		dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: m.StringifiedContent(),
		})
		for _, imageURL := range urls {
			dist.MultiContent = append(dist.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    imageURL,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	default:
		dist.Content = m.StringifiedContent()
	}
}

// ToAnthropic convert message to anthropic Message, inline images are sent as base64 sources
func (m Message) ToAnthropic(dist *anthropic.Message) {
	dist.Role = anthropic.ChatRole(m.role)
	var images []schema.Image
	if attachement := m.Attachement(); attachement != nil {
		images = attachement.Images
	}
	dist.Content = make([]anthropic.MessageContent, 0, len(images)+1)
	for _, img := range images {
		dist.Content = append(dist.Content, anthropic.NewImageMessageContent(anthropic.MessageContentSource{
			Type:      "base64",
			MediaType: img.MimeType,
			Data:      img.Base64(),
		}))
	}
	dist.Content = append(dist.Content, anthropic.NewTextMessageContent(m.StringifiedContent()))
}

// ToGemini convert message to gemini content parts
func (m Message) ToGemini() []genai.Part {
	var images []schema.Image
	if attachement := m.Attachement(); attachement != nil {
		images = attachement.Images
	}
	parts := make([]genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MimeType, Data: img.Data})
	}
	return append(parts, genai.Text(m.StringifiedContent()))
}
