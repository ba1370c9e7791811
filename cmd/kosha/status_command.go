package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"kosha/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show library counts by document type and review state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				summary, err := svc.Summary(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, summary)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Works: %d  Verses: %d  Commentary: %d\n",
					summary.Works, summary.Verses, summary.Commentary)
				if len(summary.States) == 0 {
					return nil
				}
				states := make([]string, 0, len(summary.States))
				for state := range summary.States {
					states = append(states, state)
				}
				sort.Strings(states)
				rows := make([][]string, 0, len(states))
				for _, state := range states {
					rows = append(rows, []string{state, strconv.Itoa(summary.States[state])})
				}
				table := renderTable(
					[]string{"State", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
