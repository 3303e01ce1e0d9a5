package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/palimpseste/palimpseste/internal/bootstrap"
	"github.com/palimpseste/palimpseste/internal/cli"
	"github.com/palimpseste/palimpseste/internal/config"
	"github.com/palimpseste/palimpseste/internal/confirm"
	"github.com/palimpseste/palimpseste/internal/track"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// runWithService opens the configured storage and runs fn with a track service.
func runWithService(cmd *cobra.Command, fn func(ctx context.Context, service *track.Service, presenter *cli.Presenter) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	service, closeRepo, err := bootstrap.NewTrackService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap.NewTrackService() > %w", err)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			slog.Error("failed to close the track storage", "error", err)
		}
	}()

	return fn(ctx, service, cli.NewPresenter(cmd.InOrStdin(), cmd.OutOrStdout()))
}

// confirmOperation returns true when operation may proceed, asking the user when the track requires it.
func confirmOperation(
	ctx context.Context,
	service *track.Service,
	presenter *cli.Presenter,
	skip bool,
	trackID string,
	operation confirm.Operation,
	passageID string,
) (bool, error) {
	if skip {
		return true, nil
	}
	decision, err := service.Confirmation(ctx, trackID, operation, passageID)
	if err != nil {
		return false, err
	}
	return presenter.Confirm(decision)
}

func printCancelled(cmd *cobra.Command) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
}
