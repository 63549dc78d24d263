package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/chat-session/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.Transcript
		want       []string
		notWant    []string
	}{
		{
			name:       "basic transcript",
			transcript: internal.CreateTestTranscript("session_1"),
			want: []string{
				"# session_1",
				"**Messages:** 2",
				"**User:**",
				"Hello, how are you?",
				"**Assistant:**",
				"---",
			},
		},
		{
			name:       "empty transcript",
			transcript: internal.CreateTestTranscriptWithMessages("session_2", []internal.Message{}),
			want: []string{
				"# session_2",
				"**Messages:** 0",
				"_No messages._",
			},
			notWant: []string{"---"},
		},
		{
			name: "error record",
			transcript: internal.CreateTestTranscriptWithMessages("session_3", []internal.Message{
				internal.UserMessage("hello"),
				internal.AssistantMessage("Error: rate limited"),
			}),
			want: []string{"Error: rate limited"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.transcript, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output should not contain %q\n%s", nw, out)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bold escaped", input: "this is **bold**", want: "this is \\*\\*bold\\*\\*"},
		{name: "underscore escaped", input: "__init__", want: "\\_\\_init\\_\\_"},
		{name: "code block preserved", input: "```\n**x**\n```", want: "```\n**x**\n```"},
		{name: "plain text", input: "nothing to do", want: "nothing to do"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeMarkdown(tt.input); got != tt.want {
				t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
