package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that chat-session can reach its state and the chat service",
	Long: `Check the health of chat-session by verifying:
  • The local state database opens and is readable
  • The chat service answers on /health
  • Conversations can be listed

This command is useful for debugging configuration, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		failed := false

		fmt.Fprintln(out, sectionStyle.Render("🔍 Chat Session Health Check"))
		fmt.Fprintln(out)

		// Step 1: Local state
		fmt.Fprintln(out, infoStyle.Render("Step 1: Opening local state..."))
		a, err := openApp()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open state database:"), err)
			return fmt.Errorf("health check failed")
		}
		defer a.Close()
		fmt.Fprintln(out, successStyle.Render("✅ State database is accessible"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Database: %s\n", a.store.Path())
		}
		if id, ok := a.persistedSession(ctx); ok {
			fmt.Fprintf(out, "   Current session: %s\n", id)
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No current session yet (one is created on first use)"))
		}
		fmt.Fprintln(out)

		// Step 2: Service reachability
		fmt.Fprintln(out, infoStyle.Render("Step 2: Contacting chat service..."))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   URL: %s\n", a.client.BaseURL())
		}
		status, err := a.client.Health(ctx)
		if err != nil {
			failed = true
			fmt.Fprintln(out, errorStyle.Render("❌ Chat service unreachable:"), err)
		} else {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Chat service is %s", status)))
		}
		fmt.Fprintln(out)

		// Step 3: Sessions
		fmt.Fprintln(out, infoStyle.Render("Step 3: Listing conversations..."))
		sessions, err := a.client.Sessions(ctx)
		if err != nil {
			failed = true
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to list conversations:"), err)
		} else {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d conversation(s)", len(sessions))))
			if healthcheckVerbose {
				printSessionSample(out, sessions)
			}
		}
		fmt.Fprintln(out)

		if failed {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed")
		}
		fmt.Fprintln(out, successStyle.Render("✅ All checks passed"))
		return nil
	},
}

func printSessionSample(out io.Writer, sessions []internal.SessionSummary) {
	for i, s := range sessions {
		if i == 5 {
			fmt.Fprintf(out, "   ... and %d more\n", len(sessions)-5)
			break
		}
		fmt.Fprintf(out, "   [%d] %s\n", i+1, s.ID)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "verbose", false, "Show detailed information")
}
