package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Inspect and run proposed plans",
}

// plan show

var planShowSession string

var planShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Render a plan as YAML",
	Long:  "Render a plan as YAML, read from a file, stdin, or the latest plan in a conversation.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planData, err := resolvePlanData(args, planShowSession)
		if err != nil {
			return err
		}
		p, err := plan.Parse(planData)
		if err != nil {
			return err
		}
		yml, err := p.RenderYAML()
		if err != nil {
			return err
		}
		fmt.Print(yml)
		return nil
	},
}

// plan run

var (
	planRunSession string
	planRunFile    string
)

var planRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Confirm a plan and start the analysis",
	Long:  "Confirm a proposed plan and start the analysis. By default the latest plan in the conversation is used.",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := projectID()
		if err != nil {
			return err
		}
		ctx := context.Background()
		client := newClient()

		session, err := resolveSession(ctx, client, project, planRunSession)
		if err != nil {
			return err
		}

		var planData string
		if planRunFile != "" {
			planData, err = readPlanFile(planRunFile)
		} else {
			planData, err = latestPlanData(ctx, client, session.ID)
		}
		if err != nil {
			return err
		}

		resp, err := client.ConfirmPlan(ctx, project, session.ID, planData)
		if err != nil {
			return wrapAuthError(err)
		}
		fmt.Printf("Analysis started: %s\n", resp.AnalysisID)
		return nil
	},
}

// confirm is a top-level shorthand for "plan run".
var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm a plan and start the analysis",
	Long:  "Shorthand for 'strand plan run'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return planRunCmd.RunE(cmd, args)
	},
}

// resolvePlanData picks the plan source: an explicit file argument ("-"
// for stdin) or the latest plan in a conversation.
func resolvePlanData(args []string, sessionRef string) (string, error) {
	if len(args) > 0 {
		return readPlanFile(args[0])
	}
	if sessionRef == "" {
		return "", fmt.Errorf("pass a plan file or --session")
	}
	project, err := projectID()
	if err != nil {
		return "", err
	}
	ctx := context.Background()
	client := newClient()
	session, err := resolveSession(ctx, client, project, sessionRef)
	if err != nil {
		return "", err
	}
	return latestPlanData(ctx, client, session.ID)
}

func readPlanFile(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// latestPlanData returns the plan attached to the newest assistant
// message carrying one.
func latestPlanData(ctx context.Context, client *api.Client, sessionID string) (string, error) {
	messages, err := client.ListMessages(ctx, sessionID)
	if err != nil {
		return "", wrapAuthError(err)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].PlanData != "" {
			return messages[i].PlanData, nil
		}
	}
	return "", fmt.Errorf("no plan found in conversation %s", sessionID)
}

func init() {
	planShowCmd.Flags().StringVar(&planShowSession, "session", "", "conversation id or title")
	planRunCmd.Flags().StringVar(&planRunSession, "session", "", "conversation id or title")
	planRunCmd.Flags().StringVar(&planRunFile, "file", "", "plan file ('-' for stdin) instead of the conversation's latest plan")
	_ = planRunCmd.MarkFlagRequired("session")

	confirmCmd.Flags().StringVar(&planRunSession, "session", "", "conversation id or title")
	confirmCmd.Flags().StringVar(&planRunFile, "file", "", "plan file ('-' for stdin) instead of the conversation's latest plan")
	_ = confirmCmd.MarkFlagRequired("session")

	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planRunCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(confirmCmd)
}
