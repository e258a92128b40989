package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strandtools/strand/internal/chat"
	"github.com/strandtools/strand/internal/plan"
)

var sendSession string

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a message and stream the reply",
	Long:  "Send one message to a conversation and stream the assistant's reply to stdout. If the reply proposes a plan, it is printed as YAML.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := store.LoadSessions(ctx); err != nil {
		return wrapAuthError(err)
	}

	var sessionID string
	if sendSession != "" {
		project, err := projectID()
		if err != nil {
			return err
		}
		session, err := resolveSession(ctx, newClient(), project, sendSession)
		if err != nil {
			return err
		}
		sessionID = session.ID
	} else {
		session, err := store.Create(ctx, "")
		if err != nil {
			return wrapAuthError(err)
		}
		sessionID = session.ID
		fmt.Fprintf(os.Stderr, "conversation: %s\n", sessionID)
	}

	if err := store.Select(ctx, sessionID); err != nil {
		return wrapAuthError(err)
	}

	// Print only the delta of each content event; events carry the full
	// accumulated text.
	printed := 0
	unsubContent := store.ContentEvents.Subscribe(func(e chat.ContentEvent) {
		if !e.Active || len(e.Content) < printed {
			return
		}
		fmt.Print(e.Content[printed:])
		printed = len(e.Content)
	})
	defer unsubContent()

	msg, err := store.Send(ctx, args[0])
	if err != nil {
		return wrapAuthError(err)
	}
	fmt.Println()

	if msg.PlanData != "" {
		p, perr := plan.Parse(msg.PlanData)
		if perr != nil {
			return fmt.Errorf("reply carried an unreadable plan: %w", perr)
		}
		yml, yerr := p.RenderYAML()
		if yerr != nil {
			return yerr
		}
		fmt.Println()
		fmt.Println("Proposed plan:")
		fmt.Print(yml)
		fmt.Printf("\nRun it with: strand plan run --session %s\n", sessionID)
	}
	return nil
}

func init() {
	sendCmd.Flags().StringVar(&sendSession, "session", "", "conversation id or title (default: create a new one)")
	rootCmd.AddCommand(sendCmd)
}
