package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palimpseste/palimpseste/internal/cli"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/track"
)

func newConceptsCommand() *cobra.Command {
	conceptsCommand := &cobra.Command{
		Use:   "concepts",
		Short: "Extract and review the concepts of a track",
	}
	conceptsCommand.AddCommand(
		newConceptsExtractCommand(),
		newConceptsListCommand(),
		newConceptsStatusCommand(),
		newConceptsLinkCommand(),
		newConceptsUnlinkCommand(),
	)
	return conceptsCommand
}

func newConceptsExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <track-id>",
		Short: "Detect definitions in the passages and add them as proposed concepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				t, detected, err := service.ExtractConcepts(ctx, args[0])
				if err != nil {
					return err
				}
				if detected == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No concept detected.")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Concepts detected: %d\n", detected)
				presenter.PrintConcepts(t)
				return nil
			})
		},
	}
}

func newConceptsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <track-id>",
		Short: "List the concepts of a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
				t, err := service.Get(ctx, args[0])
				if err != nil {
					return err
				}
				presenter.PrintConcepts(t)
				return nil
			})
		},
	}
}

func newConceptsStatusCommand() *cobra.Command {
	status := Status(concept.StatusValidated)
	cmd := &cobra.Command{
		Use:   "status <track-id> <concept-id>",
		Short: "Validate, reject or propose a concept again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConceptMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.SetConceptStatus(ctx, args[0], args[1], concept.Status(status))
			})
		},
	}
	cmd.Flags().Var(&status, "status", "New status: proposed, validated or rejected")
	return cmd
}

func newConceptsLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <track-id> <concept-id> <passage-id>",
		Short: "Ground a concept in one more passage",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConceptMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.LinkConceptPassage(ctx, args[0], args[1], args[2])
			})
		},
	}
}

func newConceptsUnlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <track-id> <concept-id> <passage-id>",
		Short: "Remove a passage from a concept",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConceptMutation(cmd, func(ctx context.Context, service *track.Service) (track.Track, error) {
				return service.UnlinkConceptPassage(ctx, args[0], args[1], args[2])
			})
		},
	}
}

func runConceptMutation(cmd *cobra.Command, mutate func(ctx context.Context, service *track.Service) (track.Track, error)) error {
	return runWithService(cmd, func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error {
		t, err := mutate(ctx, service)
		if err != nil {
			return err
		}
		presenter.PrintConcepts(t)
		return nil
	})
}
