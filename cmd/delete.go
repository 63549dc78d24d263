package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	deleteYes bool
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a conversation on the server",
	Long: `Delete a conversation and its messages on the server.

Asks for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := strings.TrimSpace(args[0])
		if sessionID == "" {
			return fmt.Errorf("session id is required")
		}

		if !deleteYes {
			if !confirm(cmd, fmt.Sprintf("Delete session %s? [y/N] ", sessionID)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		current, hasCurrent := a.persistedSession(ctx)
		if hasCurrent {
			a.chat.Sessions.SwitchTo(current)
		}

		if !a.chat.DeleteSession(ctx, sessionID) {
			return fmt.Errorf("failed to delete session %s", sessionID)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", sessionID)
		if _, active := a.chat.ActiveSession(); hasCurrent && !active {
			internal.PrintInfo("That was the current conversation. Run 'chat-session new' to start another.")
		}
		return nil
	},
}

// confirm asks prompt on the command's input; anything but y/yes (or EOF) is a no
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}
