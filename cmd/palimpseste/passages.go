package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/palimpseste/palimpseste/internal/cli"
	"github.com/palimpseste/palimpseste/internal/confirm"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

func newPassagesCommand() *cobra.Command {
	passagesCommand := &cobra.Command{
		Use:   "passages",
		Short: "Generate and edit the passages of a track",
	}
	passagesCommand.AddCommand(
		newPassagesSegmentCommand(),
		newPassagesListCommand(),
		newPassagesEditCommand(),
		newPassagesSplitCommand(),
		newPassagesMergeCommand(),
		newPassagesMoveCommand(),
		newPassagesDeleteCommand(),
	)
	return passagesCommand
}

func newPassagesSegmentCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "segment <track-id>",
		Short: "Regenerate the passages from the processed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				ok, err := confirmOperation(ctx, service, presenter, yes, args[0], confirm.OperationRegenerate, "")
				if err != nil {
					return err
				}
				if !ok {
					printCancelled(cmd)
					return nil
				}

				t, err := service.Segment(ctx, args[0])
				if err != nil {
					return err
				}
				presenter.PrintPassages(t.Passages)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Discard edited passages without asking")
	return cmd
}

func newPassagesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <track-id>",
		Short: "List the passages of a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				t, err := service.Get(ctx, args[0])
				if err != nil {
					return err
				}
				presenter.PrintPassages(t.Passages)
				return nil
			})
		},
	}
}

func newPassagesEditCommand() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "edit <track-id> <passage-id>",
		Short: "Replace the text of a passage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassageMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.EditPassage(ctx, args[0], args[1], text)
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "New text of the passage")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newPassagesSplitCommand() *cobra.Command {
	var cut int
	cmd := &cobra.Command{
		Use:   "split <track-id> <passage-id>",
		Short: "Split a passage in two at a character offset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassageMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.SplitPassage(ctx, args[0], args[1], cut)
			})
		},
	}
	cmd.Flags().IntVar(&cut, "at", 0, "Character offset where the passage is cut")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newPassagesMergeCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "merge <track-id> <passage-id>",
		Short: "Merge a passage with the next one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfirmedPassageMutation(cmd, yes, confirm.OperationMergePassages, args,
				func(ctx context.Context, service *track.Service) (track.Track, error) {
					return service.MergePassage(ctx, args[0], args[1])
				})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Merge without asking")
	return cmd
}

func newPassagesMoveCommand() *cobra.Command {
	direction := Direction(passage.DirectionUp)
	cmd := &cobra.Command{
		Use:   "move <track-id> <passage-id>",
		Short: "Swap a passage with its neighbour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassageMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.MovePassage(ctx, args[0], args[1], passage.Direction(direction))
			})
		},
	}
	cmd.Flags().Var(&direction, "direction", "Direction of the move, up or down")
	return cmd
}

func newPassagesDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <track-id> <passage-id>",
		Short: "Delete a passage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfirmedPassageMutation(cmd, yes, confirm.OperationDeletePassage, args,
				func(ctx context.Context, service *track.Service) (track.Track, error) {
					return service.DeletePassage(ctx, args[0], args[1])
				})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func runPassageMutation(cmd *cobra.Command, mutate func(ctx context.Context, service *track.Service) (track.Track, error)) error {
	return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
		t, err := mutate(ctx, service)
		if err != nil {
			return err
		}
		presenter.PrintPassages(t.Passages)
		return nil
	})
}

// runConfirmedPassageMutation expects args to be the track id followed by the passage id.
func runConfirmedPassageMutation(
	cmd *cobra.Command,
	yes bool,
	operation confirm.Operation,
	args []string,
	mutate func(ctx context.Context, service *track.Service) (track.Track, error),
) error {
	return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
		ok, err := confirmOperation(ctx, service, presenter, yes, args[0], operation, args[1])
		if err != nil {
			return err
		}
		if !ok {
			printCancelled(cmd)
			return nil
		}

		t, err := mutate(ctx, service)
		if err != nil {
			return err
		}
		presenter.PrintPassages(t.Passages)
		return nil
	})
}
