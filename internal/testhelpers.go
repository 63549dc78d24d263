package internal

import (
	"context"
	"sync"
	"time"
)

// CreateTestTranscript creates a transcript with a short exchange
func CreateTestTranscript(id string) *Transcript {
	return &Transcript{
		SessionID:  id,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Messages: []Message{
			UserMessage("Hello, how are you?"),
			AssistantMessage("I'm doing well, thank you!"),
		},
	}
}

// CreateTestTranscriptWithMessages creates a transcript with custom messages
func CreateTestTranscriptWithMessages(id string, messages []Message) *Transcript {
	return &Transcript{
		SessionID: id,
		Messages:  messages,
	}
}

// FakeBackend is an in-process Backend for tests. Handlers may be replaced
// per test; calls are recorded.
type FakeBackend struct {
	mu sync.Mutex

	ChatFunc     func(ctx context.Context, req ChatRequest) (string, error)
	HistoryFunc  func(ctx context.Context, sessionID string) ([]HistoryRecord, error)
	SessionsFunc func(ctx context.Context) ([]SessionSummary, error)
	DeleteFunc   func(ctx context.Context, sessionID string) error

	ChatRequests    []ChatRequest
	HistoryRequests []string
	DeleteRequests  []string
}

// Chat records req and delegates to ChatFunc
func (f *FakeBackend) Chat(ctx context.Context, req ChatRequest) (string, error) {
	f.mu.Lock()
	f.ChatRequests = append(f.ChatRequests, req)
	fn := f.ChatFunc
	f.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(ctx, req)
}

// History records sessionID and delegates to HistoryFunc
func (f *FakeBackend) History(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	f.mu.Lock()
	f.HistoryRequests = append(f.HistoryRequests, sessionID)
	fn := f.HistoryFunc
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, sessionID)
}

// Sessions delegates to SessionsFunc
func (f *FakeBackend) Sessions(ctx context.Context) ([]SessionSummary, error) {
	f.mu.Lock()
	fn := f.SessionsFunc
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

// DeleteHistory records sessionID and delegates to DeleteFunc
func (f *FakeBackend) DeleteHistory(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	f.DeleteRequests = append(f.DeleteRequests, sessionID)
	fn := f.DeleteFunc
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, sessionID)
}

// LastChatRequest returns the most recent chat request
func (f *FakeBackend) LastChatRequest() (ChatRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ChatRequests) == 0 {
		return ChatRequest{}, false
	}
	return f.ChatRequests[len(f.ChatRequests)-1], true
}

// HistoryCalls returns the number of history fetches
func (f *FakeBackend) HistoryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.HistoryRequests)
}

var _ Backend = (*FakeBackend)(nil)
