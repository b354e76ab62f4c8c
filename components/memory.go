package components

import (
	"sync"

	"github.com/bububa/planthy/schema"
)

// Memory Manages the chat history of a single conversation.
// threadsafe
type Memory struct {
	//	history is a list of messages representing the chat history.
	history []Message
	//	turnID is the ID of the current turn.
	turnID string
	// maxMessages is the maximum number of messages to keep in history.
	// When exceeded, oldest messages are removed first.
	maxMessages int
	// mtx sync lock
	mtx sync.RWMutex
}

// NewMemory initializes the Memory with an empty history and optional constraints.
func NewMemory(maxMessages int) *Memory {
	return &Memory{
		maxMessages: maxMessages,
		history:     make([]Message, 0, maxMessages+1),
	}
}

// NewTurn starts a new turn with a random turn ID and returns it.
func (m *Memory) NewTurn() string {
	turnID := NewTurnID()
	m.mtx.Lock()
	m.turnID = turnID
	m.mtx.Unlock()
	return turnID
}

// NewMessage adds a message to the chat history and manages overflow.
func (m *Memory) NewMessage(role MessageRole, content schema.Schema) *Message {
	msg := NewMessage(role, content)
	m.Append(msg)
	return msg
}

// Append adds a prepared message to the current turn.
func (m *Memory) Append(msg *Message) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	msg.SetTurnID(m.turnID)
	m.history = append(m.history, *msg)
	if m.maxMessages > 0 && len(m.history) > m.maxMessages {
		m.history = m.history[len(m.history)-m.maxMessages:]
	}
}

// History returns a copy of the chat history.
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	list := make([]Message, len(m.history))
	copy(list, m.history)
	return list
}

// MessageCount returns the number of messages in the chat history.
func (m *Memory) MessageCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.history)
}
