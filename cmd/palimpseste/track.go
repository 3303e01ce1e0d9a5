package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/palimpseste/palimpseste/internal/cli"
	"github.com/palimpseste/palimpseste/internal/confirm"
	"github.com/palimpseste/palimpseste/internal/track"
)

func newTrackCommand() *cobra.Command {
	trackCommand := &cobra.Command{
		Use:   "track",
		Short: "Create and inspect tracks",
	}
	trackCommand.AddCommand(
		newTrackCreateCommand(),
		newTrackListCommand(),
		newTrackShowCommand(),
	)
	return trackCommand
}

func newTrackCreateCommand() *cobra.Command {
	var params track.CreateParams
	level := Level(track.LevelA)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Level = track.Level(level)
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				created, err := service.Create(ctx, params)
				if err != nil {
					return err
				}
				presenter.PrintTrack(created)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&params.Title, "title", "", "Title of the track")
	flags.StringVar(&params.Description, "description", "", "Optional description")
	flags.Var(&level, "level", "Audience level, A or B")
	flags.IntVar(&params.ChaptersCount, "chapters", 1, "Number of chapters, at least one")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTrackListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracks, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				tracks, err := service.List(ctx)
				if err != nil {
					return err
				}
				presenter.PrintTracks(tracks)
				return nil
			})
		},
	}
}

func newTrackShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <track-id>",
		Short: "Show a track and its document state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				t, err := service.Get(ctx, args[0])
				if err != nil {
					return err
				}
				presenter.PrintTrack(t)
				return nil
			})
		},
	}
}

func newDocumentCommand() *cobra.Command {
	documentCommand := &cobra.Command{
		Use:   "document",
		Short: "Manage the source document of a track",
	}
	documentCommand.AddCommand(newDocumentUploadCommand())
	return documentCommand
}

func newDocumentUploadCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "upload <track-id> <file>",
		Short: "Attach a PDF, text or Markdown document to a track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trackID, filePath := args[0], args[1]
			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", filePath, err)
			}

			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				ok, err := confirmOperation(ctx, service, presenter, yes, trackID, confirm.OperationReplaceDocument, "")
				if err != nil {
					return err
				}
				if !ok {
					printCancelled(cmd)
					return nil
				}

				t, err := service.UploadDocument(ctx, trackID, filepath.Base(filePath), data)
				if err != nil {
					return err
				}
				presenter.PrintTrack(t)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace the current document without asking")
	return cmd
}
