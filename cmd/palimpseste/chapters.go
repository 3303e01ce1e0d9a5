package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/cli"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

var errNothingToChange = errors.New("nothing to change: set --title, --objectives or --status")

func newChaptersCommand() *cobra.Command {
	chaptersCommand := &cobra.Command{
		Use:   "chapters",
		Short: "Outline the chapters of a track",
	}
	chaptersCommand.AddCommand(
		newChaptersListCommand(),
		newChaptersEditCommand(),
		newChaptersMoveCommand(),
	)
	return chaptersCommand
}

func newChaptersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <track-id>",
		Short: "List the chapters of a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				t, err := service.Get(ctx, args[0])
				if err != nil {
					return err
				}
				presenter.PrintChapters(t.Chapters)
				return nil
			})
		},
	}
}

func newChaptersEditCommand() *cobra.Command {
	var title, objectives string
	status := ChapterStatus(chapter.StatusDraft)
	cmd := &cobra.Command{
		Use:   "edit <track-id> <chapter-id>",
		Short: "Change the title, objectives or status of a chapter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update chapter.Update
			flags := cmd.Flags()
			if flags.Changed("title") {
				update.Title = &title
			}
			if flags.Changed("objectives") {
				update.Objectives = &objectives
			}
			if flags.Changed("status") {
				s := chapter.Status(status)
				update.Status = &s
			}
			if update.Empty() {
				return errNothingToChange
			}

			return runChapterMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.UpdateChapter(ctx, args[0], args[1], update)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title of the chapter")
	cmd.Flags().StringVar(&objectives, "objectives", "", "Learning objectives of the chapter")
	cmd.Flags().Var(&status, "status", "New status: draft or validated")
	return cmd
}

func newChaptersMoveCommand() *cobra.Command {
	direction := Direction(passage.DirectionUp)
	cmd := &cobra.Command{
		Use:   "move <track-id> <chapter-id>",
		Short: "Swap a chapter with its neighbour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChapterMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.MoveChapter(ctx, args[0], args[1], passage.Direction(direction))
			})
		},
	}
	cmd.Flags().Var(&direction, "direction", "Direction of the move, up or down")
	return cmd
}

func runChapterMutation(cmd *cobra.Command, mutate func(ctx context.Context, service *track.Service) (track.Track, error)) error {
	return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
		t, err := mutate(ctx, service)
		if err != nil {
			return err
		}
		presenter.PrintChapters(t.Chapters)
		return nil
	})
}
