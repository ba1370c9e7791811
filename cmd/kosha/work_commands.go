package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kosha/internal/api"
	"kosha/internal/library"
)

func newWorkCommand(ctx *commandContext) *cobra.Command {
	workCmd := &cobra.Command{
		Use:   "work",
		Short: "Manage works in the library",
	}

	workCmd.AddCommand(newWorkListCommand(ctx))
	workCmd.AddCommand(newWorkShowCommand(ctx))
	workCmd.AddCommand(newWorkCreateCommand(ctx))
	workCmd.AddCommand(newWorkUpdateCommand(ctx))
	workCmd.AddCommand(newWorkRemoveCommand(ctx))

	return workCmd
}

func newWorkListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List works",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				works, err := svc.ListWorks(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, works)
				}
				if len(works) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is empty")
					return nil
				}
				rows := make([][]string, 0, len(works))
				for _, work := range works {
					rows = append(rows, []string{
						work.WorkID,
						truncate(preferredText(work.Title, work.Canonical), 48),
						work.Canonical,
						strings.Join(work.Langs, ","),
					})
				}
				table := renderTable(
					[]string{"Work", "Title", "Canonical", "Languages"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newWorkShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <work-id>",
		Short: "Show a work document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				work, err := svc.GetWork(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, work)
			})
		},
	}
}

func newWorkCreateCommand(ctx *commandContext) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a work from a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				var work library.Work
				if err := readDocument(cmd, fromFile, &work); err != nil {
					return err
				}
				created, err := svc.CreateWork(cmd.Context(), &work)
				if err != nil {
					return err
				}
				return writeJSON(cmd, created)
			})
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "JSON document path (defaults to stdin)")
	return cmd
}

func newWorkUpdateCommand(ctx *commandContext) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "update <work-id>",
		Short: "Replace a work document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				var work library.Work
				if err := readDocument(cmd, fromFile, &work); err != nil {
					return err
				}
				updated, err := svc.UpdateWork(cmd.Context(), args[0], &work)
				if err != nil {
					return err
				}
				return writeJSON(cmd, updated)
			})
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "JSON document path (defaults to stdin)")
	return cmd
}

func newWorkRemoveCommand(ctx *commandContext) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "rm <work-id>",
		Short: "Move a work and all its documents to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				tomb, err := svc.DeleteWork(cmd.Context(), args[0], actor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Trashed work %s (restore from %s)\n", tomb.ID, tomb.To)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Acting identity recorded on the tombstone")
	return cmd
}
