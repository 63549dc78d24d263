package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	listSearch string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations on the server",
	Long: `List the conversations the chat service holds, most recent first.

The current conversation is marked with ●. Use --search to filter by id.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		sessions := internal.FilterSessions(a.chat.ListSessions(ctx), listSearch)
		current, _ := a.persistedSession(ctx)

		displaySessions(cmd.OutOrStdout(), sessions, current, time.Now())
		return nil
	},
}

func displaySessions(out io.Writer, sessions []internal.SessionSummary, current string, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No sessions found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Updated")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 70))

	for _, s := range sessions {
		marker := " "
		if s.ID == current {
			marker = currentStyle.Render("●")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			marker,
			idStyle.Render(s.ID),
			dateStyle.Render(internal.FormatRelative(s.UpdatedAt, now)),
			dateStyle.Render(internal.FormatRelative(s.CreatedAt, now)),
		)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the full ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(sessions[0].ID)+
		idStyle.Render(") with `chat-session show <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only list sessions whose id contains this text")
}
