package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kosha/internal/api"
)

func newTrashCommand(ctx *commandContext) *cobra.Command {
	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect tombstoned documents",
	}

	trashCmd.AddCommand(newTrashListCommand(ctx))

	return trashCmd
}

func newTrashListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every tombstone in deletion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				tombs, err := svc.ListTombstones(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, tombs)
				}
				if tombs.Total == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Trash is empty")
					return nil
				}
				rows := make([][]string, 0, tombs.Total)
				for _, tomb := range tombs.Items {
					rows = append(rows, []string{
						tomb.Type,
						tomb.WorkID,
						tomb.ID,
						tomb.Actor,
						tomb.DeletedAt.Local().Format(time.DateTime),
					})
				}
				table := renderTable(
					[]string{"Type", "Work", "ID", "Actor", "Deleted"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
