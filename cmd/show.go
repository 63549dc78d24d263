package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	limit      int
	showRender bool
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the messages of a conversation",
	Long: `Display the messages of a conversation as stored on the server.

Without an id the current conversation is shown. --render formats assistant
replies as Markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var sessionID string
		if len(args) > 0 {
			sessionID = args[0]
		} else {
			id, ok := a.persistedSession(ctx)
			if !ok {
				return fmt.Errorf("no current session - start one with 'chat-session new' or pass an id")
			}
			sessionID = id
		}

		records, err := a.client.History(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if limit > 0 && len(records) > limit {
			records = records[len(records)-limit:]
		}

		var renderer *glamour.TermRenderer
		if showRender {
			renderer, err = glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(100))
			if err != nil {
				internal.LogWarn("Markdown rendering unavailable: %v", err)
			}
		}

		displayHistory(cmd.OutOrStdout(), sessionID, records, renderer, time.Now())
		return nil
	},
}

func displayHistory(out io.Writer, sessionID string, records []internal.HistoryRecord, renderer *glamour.TermRenderer, now time.Time) {
	fmt.Fprintln(out, sessionHeaderStyle.Render("💬 "+sessionID))
	fmt.Fprintln(out, sessionMetaStyle.Render(fmt.Sprintf("Messages: %d", len(records))))

	if len(records) == 0 {
		fmt.Fprintln(out, sessionMetaStyle.Render("No messages in this conversation."))
		return
	}

	for _, rec := range records {
		label := userMessageStyle.Render("👤 You")
		if internal.Role(rec.Role) == internal.RoleAssistant {
			label = assistantMessageStyle.Render("🤖 Assistant")
		}
		if ts := internal.ParseServerTime(rec.Timestamp); !ts.IsZero() {
			label += " " + timestampStyle.Render(internal.FormatRelative(ts, now))
		}
		fmt.Fprintln(out, label)

		content := rec.Content
		if renderer != nil && internal.Role(rec.Role) == internal.RoleAssistant {
			if rendered, err := renderer.Render(content); err == nil {
				fmt.Fprintln(out, strings.TrimRight(rendered, "\n"))
				continue
			}
		}
		fmt.Fprintln(out, messageContentStyle.Render(content))
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Only show the last n messages")
	showCmd.Flags().BoolVar(&showRender, "render", false, "Render assistant replies as Markdown")
}
