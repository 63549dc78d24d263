package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAPIRegistryList(t *testing.T) {
	now := time.Now()
	backend := &FakeBackend{
		SessionsFunc: func(ctx context.Context) ([]SessionSummary, error) {
			return []SessionSummary{{ID: "session_2", UpdatedAt: now}, {ID: "session_1", UpdatedAt: now.Add(-time.Hour)}}, nil
		},
	}

	sessions := NewAPIRegistry(backend).List(context.Background())
	assert.Len(t, sessions, 2)
	assert.Equal(t, "session_2", sessions[0].ID)
}

func TestAPIRegistryListFailure(t *testing.T) {
	backend := &FakeBackend{
		SessionsFunc: func(ctx context.Context) ([]SessionSummary, error) {
			return nil, errors.New("unreachable")
		},
	}

	sessions := NewAPIRegistry(backend).List(context.Background())
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestAPIRegistryDelete(t *testing.T) {
	backend := &FakeBackend{}
	registry := NewAPIRegistry(backend)

	assert.True(t, registry.Delete(context.Background(), "session_1"))
	assert.Equal(t, []string{"session_1"}, backend.DeleteRequests)

	backend.DeleteFunc = func(ctx context.Context, id string) error { return errors.New("boom") }
	assert.False(t, registry.Delete(context.Background(), "session_1"))
}

func TestFilterSessions(t *testing.T) {
	sessions := []SessionSummary{{ID: "session_100"}, {ID: "session_200"}, {ID: "SESSION_300"}}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps all", query: "", want: []string{"session_100", "session_200", "SESSION_300"}},
		{name: "blank query keeps all", query: "  ", want: []string{"session_100", "session_200", "SESSION_300"}},
		{name: "substring", query: "200", want: []string{"session_200"}},
		{name: "case insensitive", query: "session_3", want: []string{"SESSION_300"}},
		{name: "no match", query: "xyz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, s := range FilterSessions(sessions, tt.query) {
				got = append(got, s.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoveSession(t *testing.T) {
	sessions := []SessionSummary{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := RemoveSession(sessions, "b")
	assert.Equal(t, []SessionSummary{{ID: "a"}, {ID: "c"}}, got)
	assert.Len(t, sessions, 3)
	assert.Len(t, RemoveSession(sessions, "missing"), 3)
}
