package internal

import "context"

// HistorySync replaces the MessageLog with server-held history whenever the
// active session changes. Failures degrade to an empty conversation and are
// never reported to the caller.
type HistorySync struct {
	fetcher  HistoryFetcher
	log      *MessageLog
	sessions *SessionStore
}

// NewHistorySync wires a HistorySync to its collaborators
func NewHistorySync(fetcher HistoryFetcher, log *MessageLog, sessions *SessionStore) *HistorySync {
	return &HistorySync{fetcher: fetcher, log: log, sessions: sessions}
}

// Load fetches history for sessionID and replaces the log with it.
// A NoSession id clears the log without fetching. If the active session
// moves past gen before the fetch resolves, the result is dropped.
// It reports whether the log was updated.
func (h *HistorySync) Load(ctx context.Context, sessionID string, gen uint64) bool {
	if sessionID == NoSession {
		return h.sessions.WithCurrent(gen, h.log.Reset)
	}

	records, err := h.fetcher.History(ctx, sessionID)
	if err != nil {
		LogWarn("Failed to load history for %s: %v", sessionID, err)
		records = nil
	}

	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, Message{Role: Role(rec.Role), Content: rec.Content})
	}

	applied := h.sessions.WithCurrent(gen, func() {
		if len(messages) == 0 {
			h.log.Reset()
			return
		}
		h.log.Replace(messages)
	})
	if !applied {
		Logger().Debug().Str("session_id", sessionID).Msg("discarding history for abandoned session")
		return false
	}
	Logger().Debug().Str("session_id", sessionID).Int("messages", len(messages)).Msg("history loaded")
	return true
}
