package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kosha/internal/api"
	"kosha/internal/library"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Drive documents through the review workflow",
	}

	actions := []struct {
		action library.Action
		short  string
	}{
		{library.ActionSubmit, "Submit a draft for review"},
		{library.ActionApprove, "Approve a document"},
		{library.ActionReject, "Reject a document"},
		{library.ActionFlag, "Flag a document for attention"},
		{library.ActionLock, "Lock a document against further edits"},
		{library.ActionRollback, "Roll a document back to its previous state"},
		{library.ActionSegmentUpdate, "Record a segment revision without changing state"},
	}
	for _, entry := range actions {
		reviewCmd.AddCommand(newReviewActionCommand(ctx, entry.action, entry.short))
	}
	reviewCmd.AddCommand(newReviewBulkCommand(ctx))

	return reviewCmd
}

func newReviewActionCommand(ctx *commandContext, action library.Action, short string) *cobra.Command {
	var workID, actor string
	var issues []string
	var commentary bool

	cmd := &cobra.Command{
		Use:   string(action) + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				kind := "verse"
				if commentary {
					kind = "commentary"
				}
				result, err := svc.Transition(cmd.Context(), workID, api.TransitionRequest{
					Kind:   kind,
					ID:     args[0],
					Action: string(action),
					Actor:  actor,
					Issues: issues,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd, result)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting identity recorded in the history")
	cmd.Flags().StringArrayVar(&issues, "issue", nil, "Issue note attached to the transition (repeatable)")
	cmd.Flags().BoolVar(&commentary, "commentary", false, "Target a commentary entry instead of a verse")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newReviewBulkCommand(ctx *commandContext) *cobra.Command {
	var workID, actor string
	var issues []string

	cmd := &cobra.Command{
		Use:   "bulk <action> <verse-id>...",
		Short: "Apply one review action to many verses",
		Long: "Apply one review action to many verses. Failures are reported per\n" +
			"verse; the remaining verses still transition.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				result, err := svc.BulkTransition(cmd.Context(), workID, api.BulkTransitionRequest{
					VerseIDs: args[1:],
					Action:   args[0],
					Actor:    actor,
					Issues:   issues,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Succeeded: %d\n", len(result.Succeeded))
				for _, failure := range result.Failed {
					fmt.Fprintf(out, "Failed %s: %s\n", failure.ID, failure.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting identity recorded in the history")
	cmd.Flags().StringArrayVar(&issues, "issue", nil, "Issue note attached to the transition (repeatable)")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}
