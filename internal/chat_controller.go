package internal

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// SendResult describes how a send was reconciled
type SendResult struct {
	// Reply is the assistant entry appended to the log (or that would have been, if Discarded)
	Reply Message
	// Failed is true when Reply is an error record
	Failed bool
	// Discarded is true when the active session changed before the reply arrived
	Discarded bool
}

// ChatController sends user messages and reconciles replies into the MessageLog
type ChatController struct {
	sender   ChatSender
	log      *MessageLog
	sessions *SessionStore

	inflight *semaphore.Weighted
	busy     atomic.Bool
}

// NewChatController wires a ChatController to its collaborators
func NewChatController(sender ChatSender, log *MessageLog, sessions *SessionStore) *ChatController {
	return &ChatController{
		sender:   sender,
		log:      log,
		sessions: sessions,
		inflight: semaphore.NewWeighted(1),
	}
}

// Busy reports whether a send is outstanding
func (c *ChatController) Busy() bool {
	return c.busy.Load()
}

// SendMessage appends text to the log immediately, posts it with the
// preceding context window, and appends the reply or an "Error: ..." record.
// The only errors returned are ErrEmptyMessage and ErrBusy; in both cases
// the log is untouched.
func (c *ChatController) SendMessage(ctx context.Context, text string) (SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SendResult{}, ErrEmptyMessage
	}
	if !c.inflight.TryAcquire(1) {
		return SendResult{}, ErrBusy
	}
	defer c.inflight.Release(1)

	var (
		sessionID string
		gen       uint64
		window    ContextWindow
	)
	c.sessions.WithActive(func(id string, g uint64) {
		sessionID, gen = id, g
		window = c.log.AppendAfterWindow(UserMessage(text), ContextWindowSize)
	})

	c.busy.Store(true)
	defer c.busy.Store(false)

	req := ChatRequest{Message: text, History: window}
	if sessionID != NoSession {
		req.SessionID = &sessionID
	}

	log := Logger().With().Str("session_id", sessionID).Int("history", len(window)).Logger()
	log.Debug().Msg("sending message")

	var result SendResult
	reply, err := c.sender.Chat(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("send failed")
		result = SendResult{Reply: AssistantMessage("Error: " + FailureReason(err)), Failed: true}
	} else {
		result = SendResult{Reply: AssistantMessage(reply)}
	}

	if !c.sessions.WithCurrent(gen, func() { c.log.Append(result.Reply) }) {
		log.Debug().Msg("discarding reply for abandoned session")
		result.Discarded = true
	}
	return result, nil
}
