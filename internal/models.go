package internal

import (
	"encoding/json"
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContextWindowSize is the number of trailing messages sent with each request
const ContextWindowSize = 10

// Message is a single transcript entry. Messages are never edited once created.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// UserMessage builds a user-authored message
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-authored message
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ContextWindow is the bounded slice of recent history sent with a request.
// It is derived from the MessageLog and never stored.
type ContextWindow []Message

// BuildContextWindow returns the last n messages of history reduced to role and content
func BuildContextWindow(history []Message, n int) ContextWindow {
	if n <= 0 || len(history) == 0 {
		return ContextWindow{}
	}
	start := len(history) - n
	if start < 0 {
		start = 0
	}
	window := make(ContextWindow, 0, len(history)-start)
	for _, msg := range history[start:] {
		window = append(window, Message{Role: msg.Role, Content: msg.Content})
	}
	return window
}

// SessionSummary is one entry of the server's session list
type SessionSummary struct {
	ID        string    `json:"session_id" yaml:"session_id"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Transcript is a session together with its server-held history, used for display and export
type Transcript struct {
	SessionID  string    `json:"session_id" yaml:"session_id"`
	ExportedAt string    `json:"exported_at,omitempty" yaml:"exported_at,omitempty"`
	Messages   []Message `json:"messages" yaml:"messages"`
}

// ChatRequest is the POST /chat payload
type ChatRequest struct {
	Message   string        `json:"message"`
	History   ContextWindow `json:"history"`
	SessionID *string       `json:"session_id"`
}

// ChatResponse is the POST /chat success body
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HistoryRecord is one entry of GET /history/{id}
type HistoryRecord struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type historyResponse struct {
	SessionID string          `json:"session_id,omitempty"`
	History   []HistoryRecord `json:"history"`
}

type sessionRecord struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

type sessionsResponse struct {
	Sessions []sessionRecord `json:"sessions"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type healthResponse struct {
	Status string `json:"status"`
}
