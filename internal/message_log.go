package internal

import "sync"

// MessageLog is the ordered in-memory transcript of the active conversation.
// Entries are only ever appended; Replace and Reset swap the whole view when
// the active session changes.
type MessageLog struct {
	mu       sync.RWMutex
	messages []Message
}

// NewMessageLog creates an empty MessageLog
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds msg to the end of the log
func (l *MessageLog) Append(msg Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Replace swaps the log contents for msgs
func (l *MessageLog) Replace(msgs []Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(make([]Message, 0, len(msgs)), msgs...)
}

// Reset empties the log
func (l *MessageLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}

// Messages returns a copy of the log
func (l *MessageLog) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Message(nil), l.messages...)
}

// Len returns the number of entries
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Window returns the last n entries as a ContextWindow
func (l *MessageLog) Window(n int) ContextWindow {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return BuildContextWindow(l.messages, n)
}

// AppendAfterWindow captures the last n entries and then appends msg, as one step.
// The returned window never contains msg.
func (l *MessageLog) AppendAfterWindow(msg Message, n int) ContextWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	window := BuildContextWindow(l.messages, n)
	l.messages = append(l.messages, msg)
	return window
}
