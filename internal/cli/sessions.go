package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage conversations",
	Long:    "Commands for listing, creating, renaming, and deleting conversations in a project.",
}

// sessions list

var sessionsListSearch string

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Long:  "List the project's conversations, newest first, optionally filtered by title.",
	RunE:  runSessionsList,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.LoadSessions(context.Background()); err != nil {
		return wrapAuthError(err)
	}

	sessions := store.FilterSessions(sessionsListSearch)
	if len(sessions) == 0 {
		fmt.Println("No conversations found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tMSGS\tUPDATED\tTITLE")
	for _, s := range sessions {
		title := s.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			s.ID, s.MessageCount, s.UpdatedAt.Format("2006-01-02 15:04"), title)
	}
	_ = w.Flush()
	return nil
}

// sessions new

var sessionsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a conversation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectID()
		if err != nil {
			return err
		}
		title := ""
		if len(args) > 0 {
			title = args[0]
		}
		session, err := newClient().CreateSession(context.Background(), project, title)
		if err != nil {
			return wrapAuthError(err)
		}
		fmt.Printf("Created conversation %s\n", session.ID)
		return nil
	},
}

// sessions rename

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id-or-title> <new-title>",
	Short: "Rename a conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectID()
		if err != nil {
			return err
		}
		client := newClient()
		session, err := resolveSession(context.Background(), client, project, args[0])
		if err != nil {
			return err
		}
		if err := client.RenameSession(context.Background(), session.ID, args[1]); err != nil {
			return wrapAuthError(err)
		}
		fmt.Printf("Renamed %s to %q\n", session.ID, args[1])
		return nil
	},
}

// sessions rm

var sessionsRmCmd = &cobra.Command{
	Use:     "rm <id-or-title>",
	Aliases: []string{"delete"},
	Short:   "Delete a conversation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectID()
		if err != nil {
			return err
		}
		client := newClient()
		session, err := resolveSession(context.Background(), client, project, args[0])
		if err != nil {
			return err
		}
		if err := client.DeleteSession(context.Background(), session.ID); err != nil {
			return wrapAuthError(err)
		}
		fmt.Printf("Deleted %s\n", session.ID)
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().StringVarP(&sessionsListSearch, "search", "s", "", "filter by title substring")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	rootCmd.AddCommand(sessionsCmd)
}
