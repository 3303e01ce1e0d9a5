package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palimpseste/palimpseste/internal/cli"
	"github.com/palimpseste/palimpseste/internal/database"
	"github.com/palimpseste/palimpseste/internal/export"
	"github.com/palimpseste/palimpseste/internal/track"
)

func newExportCommand() *cobra.Command {
	var pdf bool
	var outputDirectory string
	cmd := &cobra.Command{
		Use:   "export <track-id>",
		Short: "Write a review sheet of the passages and concepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if outputDirectory == "" {
				outputDirectory = cfg.Export.Directory
			}
			exporter, err := export.NewExporter(outputDirectory, cfg.Export.Template)
			if err != nil {
				return err
			}

			return runWithService(cmd, func(ctx context.Context, service *track.Service, _ *cli.Presenter) error {
				t, err := service.Get(ctx, args[0])
				if err != nil {
					return err
				}

				write := exporter.WriteMarkdown
				if pdf {
					write = exporter.WritePDF
				}
				path, err := write(t)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Review sheet written to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&pdf, "pdf", false, "Write a PDF next to the Markdown sheet")
	cmd.Flags().StringVarP(&outputDirectory, "output", "o", "", "Output directory, export.directory by default")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := database.Migrate(db); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}
