package cmd

import (
	"strings"
	"testing"
)

func TestSendCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "send", "hello", "there")
	if strings.TrimSpace(out) != "echo: hello there" {
		t.Errorf("send output = %q, want the reply", out)
	}

	id := strings.TrimSpace(env.mustRun(t, "current"))
	if got := env.server.History(id); len(got) != 2 {
		t.Fatalf("server history for %s has %d records, want 2", id, len(got))
	}

	// the next send continues the same conversation with its history as context
	env.mustRun(t, "send", "again")
	requests := env.server.Requests()
	if len(requests) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(requests))
	}
	last := requests[1]
	if last.SessionID == nil || *last.SessionID != id {
		t.Errorf("second send session_id = %v, want %s", last.SessionID, id)
	}
	if len(last.History) != 2 || last.History[0].Content != "hello there" {
		t.Errorf("second send history = %+v, want the first exchange", last.History)
	}
}

func TestSendCommandNew(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "send", "first")
	before := strings.TrimSpace(env.mustRun(t, "current"))

	env.mustRun(t, "send", "--new", "second")
	after := strings.TrimSpace(env.mustRun(t, "current"))

	if before == after {
		t.Errorf("--new kept session %s", before)
	}
	requests := env.server.Requests()
	if len(requests[1].History) != 0 {
		t.Errorf("new conversation sent history %+v", requests[1].History)
	}
}

func TestSendCommandFailure(t *testing.T) {
	tests := []struct {
		name   string
		detail interface{}
		want   string
	}{
		{name: "server detail", detail: "rate limited", want: "Error: rate limited"},
		{name: "no detail", detail: nil, want: "Error: Failed to send message. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.server.FailStatus = 500
			env.server.FailDetail = tt.detail

			out, err := env.run(t, "", "send", "hello")
			if err != nil {
				t.Fatalf("send should not fail on transport errors: %v", err)
			}
			if strings.TrimSpace(out) != tt.want {
				t.Errorf("send output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestSendCommandEmpty(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "", "send", "   "); err == nil {
		t.Error("send of a blank message should fail")
	}
	if len(env.server.Requests()) != 0 {
		t.Error("blank message reached the server")
	}
}

func TestSendCommandRequiresMessage(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run(t, "", "send"); err == nil {
		t.Error("send without arguments should fail")
	}
}
