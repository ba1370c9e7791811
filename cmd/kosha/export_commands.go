package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kosha/internal/api"
	"kosha/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Produce read-only projections of the library",
	}

	exportCmd.AddCommand(newExportMergedCommand(ctx))
	exportCmd.AddCommand(newExportCleanCommand(ctx))
	exportCmd.AddCommand(newExportTrainingCommand(ctx))

	return exportCmd
}

func newExportMergedCommand(ctx *commandContext) *cobra.Command {
	var workID string

	cmd := &cobra.Command{
		Use:   "merged",
		Short: "Export a work with all verses and commentary inline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				merged, err := svc.ExportMerged(cmd.Context(), workID)
				if err != nil {
					return err
				}
				return writeJSON(cmd, merged)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}

func newExportCleanCommand(ctx *commandContext) *cobra.Command {
	var workID string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Export publication-ready documents without curation metadata",
		Long: "Export publication-ready documents without curation metadata. With\n" +
			"--work a single work is exported; otherwise the whole library.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				if workID != "" {
					clean, err := svc.ExportClean(cmd.Context(), workID)
					if err != nil {
						return err
					}
					return writeJSON(cmd, clean)
				}
				clean, err := svc.ExportCleanAll(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd, clean)
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id (defaults to every work)")
	return cmd
}

func newExportTrainingCommand(ctx *commandContext) *cobra.Command {
	var workID, outPath string

	cmd := &cobra.Command{
		Use:   "training",
		Short: "Export approved verse texts as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				lines, err := svc.ExportTraining(cmd.Context(), workID)
				if err != nil {
					return err
				}
				if outPath == "" || outPath == "-" {
					return export.EncodeTraining(cmd.OutOrStdout(), lines)
				}
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				if err := export.EncodeTraining(file, lines); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d lines to %s\n", len(lines), outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&workID, "work", "w", "", "Work id")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (defaults to stdout)")
	_ = cmd.MarkFlagRequired("work")
	return cmd
}
