package track

import "context"

//go:generate mockgen -source=repository.go -destination=../mocks/track/mock_repository.go -package=mock_track

// Repository stores tracks with their document, passages and concepts.
type Repository interface {
	FindAll(ctx context.Context) ([]Track, error)
	// Find returns ErrTrackNotFound when no track has the id.
	Find(ctx context.Context, id string) (Track, error)
	Save(ctx context.Context, t Track) error
}
