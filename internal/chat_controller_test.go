package internal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newControllerFixture(backend *FakeBackend, active string) (*ChatController, *MessageLog, *SessionStore) {
	log := NewMessageLog()
	sessions := NewSessionStore(NewMemoryStore())
	sessions.SwitchTo(active)
	return NewChatController(backend, log, sessions), log, sessions
}

func TestSendMessageSuccess(t *testing.T) {
	backend := &FakeBackend{
		ChatFunc: func(ctx context.Context, req ChatRequest) (string, error) {
			return "hi", nil
		},
	}
	c, log, _ := newControllerFixture(backend, "session_1")

	result, err := c.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []Message{UserMessage("hello"), AssistantMessage("hi")}, log.Messages())
	assert.Equal(t, AssistantMessage("hi"), result.Reply)
	assert.False(t, result.Failed)
	assert.False(t, result.Discarded)
	assert.False(t, c.Busy())

	req, ok := backend.LastChatRequest()
	require.True(t, ok)
	assert.Equal(t, "hello", req.Message)
	require.NotNil(t, req.SessionID)
	assert.Equal(t, "session_1", *req.SessionID)
	assert.Empty(t, req.History)
}

func TestSendMessageServerDetail(t *testing.T) {
	backend := &FakeBackend{
		ChatFunc: func(ctx context.Context, req ChatRequest) (string, error) {
			return "", &TransportError{Op: "chat", StatusCode: 429, Detail: "rate limited"}
		},
	}
	c, log, _ := newControllerFixture(backend, "session_1")

	result, err := c.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []Message{UserMessage("hello"), AssistantMessage("Error: rate limited")}, log.Messages())
	assert.True(t, result.Failed)
	assert.False(t, c.Busy())
}

func TestSendMessageGenericFailure(t *testing.T) {
	backend := &FakeBackend{
		ChatFunc: func(ctx context.Context, req ChatRequest) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	c, log, _ := newControllerFixture(backend, "session_1")

	_, err := c.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	msgs := log.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, UserMessage("hello"), msgs[0])
	assert.Equal(t, AssistantMessage("Error: Failed to send message. Please try again."), msgs[1])
}

func TestSendMessageTrimsInput(t *testing.T) {
	backend := &FakeBackend{}
	c, log, _ := newControllerFixture(backend, "session_1")

	_, err := c.SendMessage(context.Background(), "  hello \n")
	require.NoError(t, err)

	req, _ := backend.LastChatRequest()
	assert.Equal(t, "hello", req.Message)
	assert.Equal(t, UserMessage("hello"), log.Messages()[0])
}

func TestSendMessageEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		backend := &FakeBackend{}
		c, log, _ := newControllerFixture(backend, "session_1")

		_, err := c.SendMessage(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Empty(t, log.Messages())
		assert.Empty(t, backend.ChatRequests)
	}
}

func TestSendMessageContextWindow(t *testing.T) {
	backend := &FakeBackend{}
	c, log, _ := newControllerFixture(backend, "session_1")
	log.Replace(numbered(15))

	_, err := c.SendMessage(context.Background(), "next")
	require.NoError(t, err)

	req, _ := backend.LastChatRequest()
	require.Len(t, req.History, ContextWindowSize)
	assert.Equal(t, "m5", req.History[0].Content)
	assert.Equal(t, "m14", req.History[ContextWindowSize-1].Content)
	for _, m := range req.History {
		assert.NotEqual(t, "next", m.Content)
	}
}

func TestSendMessageWindowGrowsWithConversation(t *testing.T) {
	backend := &FakeBackend{
		ChatFunc: func(ctx context.Context, req ChatRequest) (string, error) {
			return "ok", nil
		},
	}
	c, _, _ := newControllerFixture(backend, "session_1")

	for i := 0; i < 8; i++ {
		_, err := c.SendMessage(context.Background(), "msg")
		require.NoError(t, err)
	}

	require.Len(t, backend.ChatRequests, 8)
	for i, req := range backend.ChatRequests {
		assert.Len(t, req.History, min(2*i, ContextWindowSize), "request %d", i)
	}
}

func TestSendMessageWithoutSession(t *testing.T) {
	backend := &FakeBackend{}
	c, _, _ := newControllerFixture(backend, NoSession)

	_, err := c.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	req, _ := backend.LastChatRequest()
	assert.Nil(t, req.SessionID)
}

func TestSendMessageBusy(t *testing.T) {
	release := make(chan struct{})
	backend := &FakeBackend{
		ChatFunc: func(ctx context.Context, req ChatRequest) (string, error) {
			<-release
			return "done", nil
		},
	}
	c, log, _ := newControllerFixture(backend, "session_1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.SendMessage(context.Background(), "first")
		assert.NoError(t, err)
	}()

	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)

	_, err := c.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, []Message{UserMessage("first")}, log.Messages())

	close(release)
	wg.Wait()

	assert.False(t, c.Busy())
	assert.Equal(t, []Message{UserMessage("first"), AssistantMessage("done")}, log.Messages())

	// the guard is released afterwards
	_, err = c.SendMessage(context.Background(), "third")
	assert.NoError(t, err)
}

func TestSendMessageDiscardsReplyAfterSwitch(t *testing.T) {
	var sessions *SessionStore
	var log *MessageLog
	backend := &FakeBackend{
		ChatFunc: func(ctx context.Context, req ChatRequest) (string, error) {
			// the user opens another chat while waiting
			sessions.SwitchTo("session_2")
			log.Reset()
			return "late reply", nil
		},
	}
	c, l, s := newControllerFixture(backend, "session_1")
	sessions, log = s, l

	result, err := c.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	assert.True(t, result.Discarded)
	assert.Equal(t, AssistantMessage("late reply"), result.Reply)
	assert.Empty(t, log.Messages())
	assert.False(t, c.Busy())
}

func TestSendMessageRecordsMessageInSessionItIsSentFor(t *testing.T) {
	backend := &FakeBackend{
		ChatFunc: func(ctx context.Context, req ChatRequest) (string, error) {
			return "hi", nil
		},
	}
	c, log, sessions := newControllerFixture(backend, "session_1")

	// another chat is being opened while the send starts
	held := make(chan struct{})
	release := make(chan struct{})
	go sessions.WithActive(func(string, uint64) {
		close(held)
		<-release
		sessions.active = "session_2"
		sessions.generation++
		log.Reset()
	})
	<-held

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.SendMessage(context.Background(), "hello")
		assert.NoError(t, err)
	}()

	assert.Never(t, func() bool { return log.Len() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	close(release)
	<-done

	req, ok := backend.LastChatRequest()
	require.True(t, ok)
	require.NotNil(t, req.SessionID)
	assert.Equal(t, "session_2", *req.SessionID)
	assert.Equal(t, []Message{UserMessage("hello"), AssistantMessage("hi")}, log.Messages())
}
