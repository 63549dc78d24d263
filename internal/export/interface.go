package export

import (
	"fmt"
	"io"

	"github.com/iksnae/chat-session/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// FileName returns the file name used for a transcript in the given exporter's format
func FileName(transcript *internal.Transcript, e Exporter) string {
	return fmt.Sprintf("%s.%s", transcript.SessionID, e.Extension())
}
