package internal

import (
	"context"
	"strings"
)

// SessionRegistry lists and deletes server-held sessions
type SessionRegistry interface {
	List(ctx context.Context) []SessionSummary
	Delete(ctx context.Context, sessionID string) bool
}

// SessionAPI is the part of the backend the registry needs
type SessionAPI interface {
	Sessions(ctx context.Context) ([]SessionSummary, error)
	DeleteHistory(ctx context.Context, sessionID string) error
}

// APIRegistry is a SessionRegistry over the backend's session endpoints.
// Failures are logged and degrade to an empty list or a false result.
type APIRegistry struct {
	api SessionAPI
}

// NewAPIRegistry creates a registry over api
func NewAPIRegistry(api SessionAPI) *APIRegistry {
	return &APIRegistry{api: api}
}

// List returns the server's sessions, or none if they cannot be fetched
func (r *APIRegistry) List(ctx context.Context) []SessionSummary {
	sessions, err := r.api.Sessions(ctx)
	if err != nil {
		LogWarn("Failed to list sessions: %v", err)
		return []SessionSummary{}
	}
	return sessions
}

// Delete removes a session on the server and reports whether it succeeded
func (r *APIRegistry) Delete(ctx context.Context, sessionID string) bool {
	if err := r.api.DeleteHistory(ctx, sessionID); err != nil {
		LogWarn("Failed to delete session %s: %v", sessionID, err)
		return false
	}
	return true
}

// FilterSessions keeps sessions whose id contains query, case-insensitively
func FilterSessions(sessions []SessionSummary, query string) []SessionSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return sessions
	}
	filtered := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.ID), query) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// RemoveSession returns sessions without the entry for id
func RemoveSession(sessions []SessionSummary, id string) []SessionSummary {
	out := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

var _ SessionRegistry = (*APIRegistry)(nil)
var _ SessionAPI = (*APIClient)(nil)
