package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chat-session/internal"
)

// JSONLExporter exports transcripts in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlRecord struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Export writes one JSON object per message
func (e *JSONLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, msg := range transcript.Messages {
		rec := jsonlRecord{
			SessionID: transcript.SessionID,
			Index:     i,
			Role:      string(msg.Role),
			Content:   msg.Content,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode message %d: %w", i, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
