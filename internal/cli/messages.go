package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var messagesCmd = &cobra.Command{
	Use:     "messages",
	Aliases: []string{"msg"},
	Short:   "Manage conversation messages",
}

var messagesListSession string

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a conversation's messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectID()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client := newClient()

		session, err := resolveSession(ctx, client, project, messagesListSession)
		if err != nil {
			return err
		}
		messages, err := client.ListMessages(ctx, session.ID)
		if err != nil {
			return wrapAuthError(err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tROLE\tPLAN\tCONTENT")
		for _, m := range messages {
			content := m.Content
			if len(content) > 60 {
				content = content[:57] + "..."
			}
			hasPlan := ""
			if m.PlanData != "" {
				hasPlan = "yes"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Role, hasPlan, content)
		}
		_ = w.Flush()
		return nil
	},
}

var messagesEditCmd = &cobra.Command{
	Use:   "edit <message-id> <content>",
	Short: "Edit a message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().UpdateMessage(context.Background(), args[0], args[1]); err != nil {
			return wrapAuthError(err)
		}
		fmt.Printf("Updated %s\n", args[0])
		return nil
	},
}

var messagesRmCmd = &cobra.Command{
	Use:     "rm <message-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a message",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteMessage(context.Background(), args[0]); err != nil {
			return wrapAuthError(err)
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	messagesListCmd.Flags().StringVar(&messagesListSession, "session", "", "conversation id or title")
	_ = messagesListCmd.MarkFlagRequired("session")

	messagesCmd.AddCommand(messagesListCmd)
	messagesCmd.AddCommand(messagesEditCmd)
	messagesCmd.AddCommand(messagesRmCmd)
	rootCmd.AddCommand(messagesCmd)
}
