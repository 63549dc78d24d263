package cmd

import (
	"fmt"

	"github.com/iksnae/chat-session/internal"
	"github.com/iksnae/chat-session/internal/tui"
	"github.com/spf13/cobra"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat",
	Long: `Open the interactive chat in the current conversation.

Keys:
  enter     send the message
  ctrl+n    start a new conversation
  ctrl+s    show or hide past conversations
  ↑/↓ enter pick a conversation in the sidebar
  d, then y delete the highlighted conversation
  /         filter conversations
  ctrl+c    quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if !internal.IsInteractive() {
		return fmt.Errorf("the interactive chat needs a terminal; use 'chat-session send <message>' instead")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(cmd.Context(), a.chat)
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
