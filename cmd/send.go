package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	sendNew bool
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <message...>",
	Short: "Send one message and print the reply",
	Long: `Send a message in the current conversation and print the reply.

The last 10 messages of the conversation are sent along as context. A failed
request prints the same "Error: ..." reply the interactive chat would show.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if sendNew {
			a.chat.NewConversation(ctx)
		} else {
			a.chat.Start(ctx)
		}

		text := strings.Join(args, " ")
		var result internal.SendResult
		err = internal.ShowProgress(ctx, "Thinking…", func() error {
			var sendErr error
			result, sendErr = a.chat.Send(ctx, text)
			return sendErr
		})
		if errors.Is(err, internal.ErrEmptyMessage) {
			return fmt.Errorf("nothing to send: %w", err)
		}
		if err != nil {
			return err
		}

		if result.Failed {
			internal.PrintError("The chat service did not answer; your message stays in the conversation")
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Reply.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().BoolVar(&sendNew, "new", false, "Start a new conversation before sending")
}
