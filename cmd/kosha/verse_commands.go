package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kosha/internal/api"
	"kosha/internal/library"
)

func newVerseCommand(ctx *commandContext) *cobra.Command {
	verseCmd := &cobra.Command{
		Use:   "verse",
		Short: "Manage verses within a work",
	}

	verseCmd.AddCommand(newVerseListCommand(ctx))
	verseCmd.AddCommand(newVerseShowCommand(ctx))
	verseCmd.AddCommand(newVerseAddCommand(ctx))
	verseCmd.AddCommand(newVerseSetCommand(ctx))
	verseCmd.AddCommand(newVersePatchCommand(ctx))
	verseCmd.AddCommand(newVerseRemoveCommand(ctx))

	return verseCmd
}

func newVerseListCommand(ctx *commandContext) *cobra.Command {
	var workID string
	var offset, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List verses in canonical order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				work, err := svc.GetWork(cmd.Context(), workID)
				if err != nil {
					return err
				}
				list, err := svc.ListVerses(cmd.Context(), workID, offset, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, list)
				}
				if len(list.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No verses")
					return nil
				}
				rows := make([][]string, 0, len(list.Items))
				for _, verse := range list.Items {
					rows = append(rows, []string{
						verse.VerseID,
						verse.NumberManual,
						strconv.Itoa(verse.Order),
						string(verse.Review.State),
						truncate(preferredText(verse.Texts, work.Canonical), 56),
					})
				}
				table := renderTable(
					[]string{"Verse", "Number", "Order", "State", "Text"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				if list.NextCursor >= 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d (continue with --offset %d)\n",
						len(list.Items), list.Total, list.NextCursor)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many verses")
	cmd.Flags().IntVar(&limit, "limit", 0, "Return at most this many verses (0 means all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newVerseShowCommand(ctx *commandContext) *cobra.Command {
	var workID string

	cmd := &cobra.Command{
		Use:   "show <verse-id>",
		Short: "Show a verse document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				verse, err := svc.GetVerse(cmd.Context(), workID, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, verse)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newVerseAddCommand(ctx *commandContext) *cobra.Command {
	var workID, fromFile, after string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a verse from a JSON document",
		Long: "Add a verse from a JSON document. Without --after the verse is appended\n" +
			"with the next sequential id; with --after it is inserted between the\n" +
			"anchor verse and its successor using a suffixed id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				var verse library.Verse
				if err := readDocument(cmd, fromFile, &verse); err != nil {
					return err
				}
				created, err := svc.CreateVerse(cmd.Context(), workID, &verse, after)
				if err != nil {
					return err
				}
				return writeJSON(cmd, created)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "JSON document path (defaults to stdin)")
	cmd.Flags().StringVar(&after, "after", "", "Insert after this verse id instead of appending")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newVerseSetCommand(ctx *commandContext) *cobra.Command {
	var workID, fromFile string

	cmd := &cobra.Command{
		Use:   "set <verse-id>",
		Short: "Replace a verse document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				var verse library.Verse
				if err := readDocument(cmd, fromFile, &verse); err != nil {
					return err
				}
				updated, err := svc.ReplaceVerse(cmd.Context(), workID, args[0], &verse)
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

func newVersePatchCommand(ctx *commandContext) *cobra.Command {
	var workID, fromFile string

	cmd := &cobra.Command{
		Use:   "patch <verse-id>",
		Short: "Merge a partial JSON document into a verse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				patch, err := readRaw(cmd, fromFile)
				if err != nil {
					return err
				}
				updated, err := svc.PatchVerse(cmd.Context(), workID, args[0], patch)
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

func newVerseRemoveCommand(ctx *commandContext) *cobra.Command {
	var workID, actor string

	cmd := &cobra.Command{
		Use:   "rm <verse-id>",
		Short: "Move a verse to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				tomb, err := svc.DeleteVerse(cmd.Context(), workID, args[0], actor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Trashed verse %s (restore from %s)\n", tomb.ID, tomb.To)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVar(&actor, "actor", "", "Acting identity recorded on the tombstone")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}
