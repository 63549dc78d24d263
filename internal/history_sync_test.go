package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSyncFixture(backend *FakeBackend) (*HistorySync, *MessageLog, *SessionStore) {
	log := NewMessageLog()
	sessions := NewSessionStore(NewMemoryStore())
	return NewHistorySync(backend, log, sessions), log, sessions
}

func TestHistorySyncReplacesLog(t *testing.T) {
	backend := &FakeBackend{
		HistoryFunc: func(ctx context.Context, id string) ([]HistoryRecord, error) {
			return []HistoryRecord{
				{Role: "user", Content: "hello", Timestamp: "2025-01-02 10:00:00"},
				{Role: "assistant", Content: "hi"},
			}, nil
		},
	}
	hs, log, sessions := newSyncFixture(backend)
	log.Append(UserMessage("stale"))

	gen := sessions.SwitchTo("session_1")
	assert.True(t, hs.Load(context.Background(), "session_1", gen))

	assert.Equal(t, []Message{UserMessage("hello"), AssistantMessage("hi")}, log.Messages())
	assert.Equal(t, []string{"session_1"}, backend.HistoryRequests)
}

func TestHistorySyncEmptyHistoryClearsLog(t *testing.T) {
	backend := &FakeBackend{
		HistoryFunc: func(ctx context.Context, id string) ([]HistoryRecord, error) {
			return []HistoryRecord{}, nil
		},
	}
	hs, log, sessions := newSyncFixture(backend)
	log.Append(UserMessage("stale"))

	gen := sessions.SwitchTo("session_1")
	hs.Load(context.Background(), "session_1", gen)

	assert.Empty(t, log.Messages())
}

func TestHistorySyncFailureClearsLog(t *testing.T) {
	backend := &FakeBackend{
		HistoryFunc: func(ctx context.Context, id string) ([]HistoryRecord, error) {
			return nil, &TransportError{Op: "history", StatusCode: 500}
		},
	}
	hs, log, sessions := newSyncFixture(backend)
	log.Append(UserMessage("stale"))

	gen := sessions.SwitchTo("session_1")
	assert.True(t, hs.Load(context.Background(), "session_1", gen))

	assert.Empty(t, log.Messages())
}

func TestHistorySyncNoSessionSkipsFetch(t *testing.T) {
	backend := &FakeBackend{}
	hs, log, sessions := newSyncFixture(backend)
	log.Append(UserMessage("stale"))

	gen := sessions.SwitchTo(NoSession)
	hs.Load(context.Background(), NoSession, gen)

	assert.Empty(t, log.Messages())
	assert.Equal(t, 0, backend.HistoryCalls())
}

func TestHistorySyncDiscardsStaleLoad(t *testing.T) {
	var sessions *SessionStore
	backend := &FakeBackend{
		HistoryFunc: func(ctx context.Context, id string) ([]HistoryRecord, error) {
			// the user switches away while the fetch is in flight
			sessions.SwitchTo("session_2")
			return []HistoryRecord{{Role: "user", Content: "from session 1"}}, nil
		},
	}
	hs, log, s := newSyncFixture(backend)
	sessions = s
	log.Append(UserMessage("current"))

	gen := sessions.SwitchTo("session_1")
	assert.False(t, hs.Load(context.Background(), "session_1", gen))

	assert.Equal(t, []Message{UserMessage("current")}, log.Messages())
}

func TestHistorySyncNeverReturnsError(t *testing.T) {
	backend := &FakeBackend{
		HistoryFunc: func(ctx context.Context, id string) ([]HistoryRecord, error) {
			return nil, errors.New("network down")
		},
	}
	hs, _, sessions := newSyncFixture(backend)
	gen := sessions.SwitchTo("session_1")

	assert.NotPanics(t, func() { hs.Load(context.Background(), "session_1", gen) })
}
