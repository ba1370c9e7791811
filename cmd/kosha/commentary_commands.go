package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kosha/internal/api"
	"kosha/internal/library"
)

func newCommentaryCommand(ctx *commandContext) *cobra.Command {
	commentaryCmd := &cobra.Command{
		Use:     "commentary",
		Aliases: []string{"comm"},
		Short:   "Manage commentary attached to verses or whole works",
	}

	commentaryCmd.AddCommand(newCommentaryListCommand(ctx))
	commentaryCmd.AddCommand(newCommentaryShowCommand(ctx))
	commentaryCmd.AddCommand(newCommentaryAddCommand(ctx))
	commentaryCmd.AddCommand(newCommentarySetCommand(ctx))
	commentaryCmd.AddCommand(newCommentaryPatchCommand(ctx))
	commentaryCmd.AddCommand(newCommentaryRemoveCommand(ctx))

	return commentaryCmd
}

func newCommentaryListCommand(ctx *commandContext) *cobra.Command {
	var workID, scope string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List commentary, optionally for one verse or the work scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				work, err := svc.GetWork(cmd.Context(), workID)
				if err != nil {
					return err
				}
				items, err := svc.ListCommentary(cmd.Context(), workID, scope)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No commentary")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					target := item.VerseID
					if target == "" {
						target = "work"
					}
					rows = append(rows, []string{
						item.CommentaryID,
						target,
						item.Speaker,
						string(item.Review.State),
						truncate(preferredText(item.Texts, work.Canonical), 48),
					})
				}
				table := renderTable(
					[]string{"Commentary", "Target", "Speaker", "State", "Text"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVar(&scope, "scope", "", `Limit to a verse id or "work" for work-level commentary`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newCommentaryShowCommand(ctx *commandContext) *cobra.Command {
	var workID string

	cmd := &cobra.Command{
		Use:   "show <commentary-id>",
		Short: "Show a commentary document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				item, err := svc.GetCommentary(cmd.Context(), workID, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, item)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newCommentaryAddCommand(ctx *commandContext) *cobra.Command {
	var workID, fromFile string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add commentary from a JSON document",
		Long: "Add commentary from a JSON document. Set verse_id in the document to\n" +
			"attach it to a verse; omit it for work-level commentary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				var item library.Commentary
				if err := readDocument(cmd, fromFile, &item); err != nil {
					return err
				}
				created, err := svc.CreateCommentary(cmd.Context(), workID, &item)
				if err != nil {
					return err
				}
				return writeJSON(cmd, created)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "JSON document path (defaults to stdin)")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newCommentarySetCommand(ctx *commandContext) *cobra.Command {
	var workID, fromFile string

	cmd := &cobra.Command{
		Use:   "set <commentary-id>",
		Short: "Replace a commentary document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				var item library.Commentary
				if err := readDocument(cmd, fromFile, &item); err != nil {
					return err
				}
				updated, err := svc.ReplaceCommentary(cmd.Context(), workID, args[0], &item)
				if err != nil {
					return err
				}
				return writeJSON(cmd, updated)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "JSON document path (defaults to stdin)")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newCommentaryPatchCommand(ctx *commandContext) *cobra.Command {
	var workID, fromFile string

	cmd := &cobra.Command{
		Use:   "patch <commentary-id>",
		Short: "Merge a partial JSON document into a commentary entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				patch, err := readRaw(cmd, fromFile)
				if err != nil {
					return err
				}
				updated, err := svc.PatchCommentary(cmd.Context(), workID, args[0], patch)
				if err != nil {
					return err
				}
				return writeJSON(cmd, updated)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "JSON patch path (defaults to stdin)")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newCommentaryRemoveCommand(ctx *commandContext) *cobra.Command {
	var workID, actor string

	cmd := &cobra.Command{
		Use:   "rm <commentary-id>",
		Short: "Move a commentary entry to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				tomb, err := svc.DeleteCommentary(cmd.Context(), workID, args[0], actor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Trashed commentary %s (restore from %s)\n", tomb.ID, tomb.To)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting identity recorded on the tombstone")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}
