package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// currentCmd represents the current command
var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the current session id",
	Long:  `Print the id of the current conversation, creating one if none exists yet.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintln(cmd.OutOrStdout(), a.chat.Sessions.GetOrCreate(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(currentCmd)
}
