package internal

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// NoSession is the active id when no conversation is selected
const NoSession = ""

const sessionIDPrefix = "session_"

// SessionStore owns the active session identifier and its persisted copy.
//
// Only GetOrCreate and NewSession write the persisted key; SwitchTo is
// in-memory. Every SwitchTo advances Generation so work started for a
// previous session can tell that it has been abandoned.
type SessionStore struct {
	kv  KeyValueStore
	now func() time.Time

	mu         sync.Mutex
	active     string
	generation uint64
	lastMinted int64
}

// NewSessionStore creates a SessionStore backed by kv
func NewSessionStore(kv KeyValueStore) *SessionStore {
	return &SessionStore{kv: kv, now: time.Now}
}

// GetOrCreate returns the persisted session id, minting and persisting one if none exists.
// Persistence failures are logged; the returned id is always usable.
func (s *SessionStore) GetOrCreate(ctx context.Context) string {
	id, ok, err := s.kv.Get(ctx, SessionIDKey)
	if err != nil {
		LogWarn("Failed to read persisted session id: %v", err)
	}
	if ok && id != "" {
		return id
	}

	id = s.mint()
	if err := s.kv.Set(ctx, SessionIDKey, id); err != nil {
		LogWarn("Failed to persist session id %s: %v", id, err)
	}
	Logger().Debug().Str("session_id", id).Msg("minted session")
	return id
}

// NewSession mints a fresh id, persists it and makes it active
func (s *SessionStore) NewSession(ctx context.Context) (string, uint64) {
	id := s.mint()
	if err := s.kv.Set(ctx, SessionIDKey, id); err != nil {
		LogWarn("Failed to persist session id %s: %v", id, err)
	}
	gen := s.SwitchTo(id)
	return id, gen
}

// SwitchTo sets the active id; NoSession clears it. It returns the new generation.
func (s *SessionStore) SwitchTo(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	s.generation++
	Logger().Debug().Str("session_id", id).Uint64("generation", s.generation).Msg("active session changed")
	return s.generation
}

// Active returns the active session id and whether one is set
func (s *SessionStore) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != NoSession
}

// Generation returns the current switch generation
func (s *SessionStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// WithCurrent runs fn while no switch can happen, provided gen is still
// current. It reports whether fn ran.
func (s *SessionStore) WithCurrent(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	fn()
	return true
}

// WithActive runs fn with the active id and its generation while no switch
// can happen.
func (s *SessionStore) WithActive(fn func(id string, gen uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.active, s.generation)
}

// mint returns "session_<epoch millis>", strictly increasing within this store
func (s *SessionStore) mint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastMinted {
		ms = s.lastMinted + 1
	}
	s.lastMinted = ms
	return sessionIDPrefix + strconv.FormatInt(ms, 10)
}
