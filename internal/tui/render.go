package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-session/internal"
)

// transcriptRenderer turns the message log into viewport content.
// Assistant replies are rendered as Markdown; rendered output is cached by
// content since messages never change.
type transcriptRenderer struct {
	width    int
	markdown *glamour.TermRenderer
	cache    map[string]string
}

func newTranscriptRenderer(width int) *transcriptRenderer {
	r := &transcriptRenderer{width: width, cache: make(map[string]string)}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		internal.LogDebug("Markdown renderer unavailable: %v", err)
	} else {
		r.markdown = md
	}
	return r
}

func (r *transcriptRenderer) render(messages []internal.Message, busy bool, spinnerFrame string) string {
	if len(messages) == 0 && !busy {
		return emptyStyle.Width(r.width).Render("How can I help you today?")
	}

	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(r.renderMessage(msg))
		b.WriteString("\n")
	}
	if busy {
		b.WriteString(thinkingStyle.Render(spinnerFrame + " Thinking…"))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *transcriptRenderer) renderMessage(msg internal.Message) string {
	if msg.Role == internal.RoleUser {
		label := userLabelStyle.Render("You")
		body := userBodyStyle.Width(max(r.width-2, 10)).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Left, label, body)
	}

	label := assistantLabelStyle.Render("Assistant")
	if strings.HasPrefix(msg.Content, "Error: ") {
		return lipgloss.JoinVertical(lipgloss.Left, label, errorBodyStyle.Width(max(r.width-2, 10)).Render(msg.Content))
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, r.markdownBody(msg.Content))
}

func (r *transcriptRenderer) markdownBody(content string) string {
	if cached, ok := r.cache[content]; ok {
		return cached
	}
	out := ""
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(content); err == nil {
			out = strings.TrimRight(rendered, "\n")
		}
	}
	if out == "" {
		out = assistantBodyStyle.Width(max(r.width-2, 10)).Render(content)
	}
	r.cache[content] = out
	return out
}
