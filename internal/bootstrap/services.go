package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/config"
	"github.com/palimpseste/palimpseste/internal/database"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

const (
	databasePingAttempts    = 5
	extractionRetryAttempts = 2
)

// NewTrackService builds the track service described by cfg.
// The returned function closes the database connection when tracks are stored in MySQL.
func NewTrackService(ctx context.Context, cfg *config.Config) (*track.Service, func() error, error) {
	repo, closeRepo, err := NewRepository(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	ingester := document.NewIngester(
		NewDocumentExtractor(cfg.Extraction),
		document.NewNormalizer(cfg.Extraction.MaxControlRatio),
	)
	service := track.NewService(
		repo,
		passage.NewSegmenter(cfg.Segmentation.MinLength, cfg.Segmentation.MaxLength),
		passage.NewEditor(),
		concept.NewExtractor(),
		ingester,
	)
	return service, closeRepo, nil
}

// NewRepository opens the track storage selected by storage.driver.
func NewRepository(ctx context.Context, cfg *config.Config) (track.Repository, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMySQL:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.Ping(ctx, db, databasePingAttempts); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return track.NewDBRepository(db), db.Close, nil
	case config.StorageDriverYAML, "":
		return track.NewYAMLRepository(cfg.Storage.Directory), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// NewDocumentExtractor returns the remote extractor when a service URL is configured, the local one otherwise.
func NewDocumentExtractor(cfg config.ExtractionConfig) document.Extractor {
	if cfg.ServiceURL == "" {
		return document.LocalExtractor{}
	}
	return document.NewRemoteExtractor(cfg.ServiceURL, time.Duration(cfg.TimeoutSeconds)*time.Second, extractionRetryAttempts)
}
