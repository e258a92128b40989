package cli

import (
	"github.com/spf13/cobra"

	"github.com/strandtools/strand/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat interface",
	Long:  "Open the terminal interface for conversations, streamed assistant replies, and plan confirmation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		return wrapAuthError(tui.Run(store))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
