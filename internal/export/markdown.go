package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chat-session/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export writes a readable Markdown transcript
func (e *MarkdownExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", transcript.SessionID)
	if transcript.ExportedAt != "" {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", transcript.ExportedAt)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	if len(transcript.Messages) == 0 {
		_, _ = fmt.Fprintf(w, "_No messages._\n")
		return nil
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range transcript.Messages {
		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", roleLabel(msg.Role), escapeMarkdown(msg.Content))

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func roleLabel(role internal.Role) string {
	switch role {
	case internal.RoleUser:
		return "User"
	case internal.RoleAssistant:
		return "Assistant"
	default:
		return string(role)
	}
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
