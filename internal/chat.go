package internal

import "context"

// Backend is everything the client needs from the remote chat service
type Backend interface {
	ChatSender
	HistoryFetcher
	SessionAPI
}

// Chat ties the session store, message log, history sync, controller and
// registry together. The CLI and TUI only talk to this type.
type Chat struct {
	Sessions   *SessionStore
	Log        *MessageLog
	History    *HistorySync
	Controller *ChatController
	Registry   SessionRegistry
}

// NewChat builds a Chat over backend with the session id persisted in kv
func NewChat(backend Backend, kv KeyValueStore) *Chat {
	sessions := NewSessionStore(kv)
	msgLog := NewMessageLog()
	return &Chat{
		Sessions:   sessions,
		Log:        msgLog,
		History:    NewHistorySync(backend, msgLog, sessions),
		Controller: NewChatController(backend, msgLog, sessions),
		Registry:   NewAPIRegistry(backend),
	}
}

// Start restores the persisted session (creating one if needed), makes it
// active and loads its history.
func (c *Chat) Start(ctx context.Context) string {
	id := c.Sessions.GetOrCreate(ctx)
	c.Select(ctx, id)
	return id
}

// Select makes id the active session and loads its history; NoSession clears the log
func (c *Chat) Select(ctx context.Context, id string) {
	gen := c.Sessions.SwitchTo(id)
	c.History.Load(ctx, id, gen)
}

// NewConversation mints and persists a new session and makes it active
func (c *Chat) NewConversation(ctx context.Context) string {
	id, gen := c.Sessions.NewSession(ctx)
	c.History.Load(ctx, id, gen)
	return id
}

// DeleteSession deletes id on the server. When id was the active session the
// client is left with no active session; no replacement is created.
func (c *Chat) DeleteSession(ctx context.Context, id string) bool {
	if !c.Registry.Delete(ctx, id) {
		return false
	}
	if active, ok := c.Sessions.Active(); ok && active == id {
		c.Select(ctx, NoSession)
	}
	return true
}

// Send sends text in the active session
func (c *Chat) Send(ctx context.Context, text string) (SendResult, error) {
	return c.Controller.SendMessage(ctx, text)
}

// ListSessions returns the server's sessions
func (c *Chat) ListSessions(ctx context.Context) []SessionSummary {
	return c.Registry.List(ctx)
}

// Messages returns a copy of the active transcript
func (c *Chat) Messages() []Message {
	return c.Log.Messages()
}

// ActiveSession returns the active session id, if any
func (c *Chat) ActiveSession() (string, bool) {
	return c.Sessions.Active()
}

// Busy reports whether a send is outstanding
func (c *Chat) Busy() bool {
	return c.Controller.Busy()
}
