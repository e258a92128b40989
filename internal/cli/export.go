package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strandtools/strand/internal/transcript"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <id-or-title>",
	Short: "Export a conversation as HTML",
	Long:  "Export a conversation transcript, including any proposed plans, as a standalone HTML page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectID()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client := newClient()

		session, err := resolveSession(ctx, client, project, args[0])
		if err != nil {
			return err
		}
		messages, err := client.ListMessages(ctx, session.ID)
		if err != nil {
			return wrapAuthError(err)
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if err := transcript.NewWriter().Write(out, session, messages); err != nil {
			return fmt.Errorf("writing transcript: %w", err)
		}
		if exportOut != "" {
			fmt.Printf("Wrote %s\n", exportOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
