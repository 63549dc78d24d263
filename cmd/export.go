package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/chat-session/internal"
	"github.com/iksnae/chat-session/internal/export"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	format    string
	outputDir string
	sessionID string
	exportAll bool
)

// maxConcurrentExports bounds history fetches during export --all
const maxConcurrentExports = 4

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export conversations to files",
	Long: `Export conversations to various formats (jsonl, md, yaml, json).

By default the current conversation is exported. Use --session-id for a
specific one or --all for every conversation on the server.
Use 'chat-session list' to see available session IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		if exportAll && sessionID != "" {
			return fmt.Errorf("--all and --session-id cannot be used together")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var ids []string
		switch {
		case exportAll:
			for _, s := range a.chat.ListSessions(ctx) {
				ids = append(ids, s.ID)
			}
		case sessionID != "":
			ids = []string{sessionID}
		default:
			id, ok := a.persistedSession(ctx)
			if !ok {
				return fmt.Errorf("no current session - pass --session-id or --all")
			}
			ids = []string{id}
		}

		if len(ids) == 0 {
			internal.PrintWarning("No sessions to export")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		var written []string
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d session(s)", len(ids)), func() error {
			var exportErr error
			written, exportErr = exportSessions(ctx, a.client, exporter, ids)
			return exportErr
		})
		if err != nil {
			return err
		}

		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		internal.PrintSuccess(fmt.Sprintf("Exported %d session(s) to %s", len(written), outputDir))
		return nil
	},
}

// exportSessions fetches and writes each session concurrently. Paths are
// returned in the order of ids.
func exportSessions(ctx context.Context, fetcher internal.HistoryFetcher, exporter export.Exporter, ids []string) ([]string, error) {
	paths := make([]string, len(ids))
	exportedAt := time.Now().UTC().Format(time.RFC3339)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentExports)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			records, err := fetcher.History(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load history for %s: %w", id, err)
			}

			transcript := &internal.Transcript{
				SessionID:  id,
				ExportedAt: exportedAt,
				Messages:   make([]internal.Message, 0, len(records)),
			}
			for _, rec := range records {
				transcript.Messages = append(transcript.Messages, internal.Message{Role: internal.Role(rec.Role), Content: rec.Content})
			}

			path, err := writeTranscript(transcript, exporter)
			if err != nil {
				return err
			}
			paths[i] = path
			internal.LogDebug("Exported %s (%d messages)", id, len(transcript.Messages))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeTranscript(transcript *internal.Transcript, exporter export.Exporter) (string, error) {
	path := filepath.Join(outputDir, export.FileName(transcript, exporter))
	f, err := os.Create(path)
	if err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(transcript, f); err != nil {
		_ = f.Close()
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by id")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every session on the server")
}
