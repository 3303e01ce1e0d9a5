package track

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/confirm"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
)

// Service loads a track, applies one operation and saves the result.
// Concepts are pruned whenever an operation removes passages they were grounded in.
type Service struct {
	repo      Repository
	segmenter *passage.Segmenter
	editor    *passage.Editor
	extractor *concept.Extractor
	ingester  *document.Ingester

	NewID func() string
	Now   func() time.Time
}

func NewService(
	repo Repository,
	segmenter *passage.Segmenter,
	editor *passage.Editor,
	extractor *concept.Extractor,
	ingester *document.Ingester,
) *Service {
	return &Service{
		repo:      repo,
		segmenter: segmenter,
		editor:    editor,
		extractor: extractor,
		ingester:  ingester,
		NewID:     uuid.NewString,
		Now:       time.Now,
	}
}

// Create stores a new empty track.
func (s *Service) Create(ctx context.Context, params CreateParams) (Track, error) {
	t, err := New(s.NewID(), params, s.Now())
	if err != nil {
		return Track{}, err
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return Track{}, fmt.Errorf("save track: %w", err)
	}
	slog.Info("track created", "track id", t.ID, "title", t.Title)
	return t, nil
}

// Get loads a track and checks that its passages are consistent.
func (s *Service) Get(ctx context.Context, id string) (Track, error) {
	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return Track{}, err
	}
	if err := passage.Validate(t.Passages); err != nil {
		return Track{}, fmt.Errorf("track %s: %w", id, err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]Track, error) {
	tracks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return tracks, nil
}

// UploadDocument replaces the track's document. The pending state is saved before extraction starts;
// a failed extraction is saved too and is not returned as an error.
func (s *Service) UploadDocument(ctx context.Context, id string, fileName string, data []byte) (Track, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, err
	}

	pending := s.ingester.Pending(fileName)
	t.Document = &pending
	if err := s.save(ctx, &t); err != nil {
		return Track{}, err
	}

	doc := s.ingester.Ingest(ctx, pending, data)
	t.Document = &doc
	if err := s.save(ctx, &t); err != nil {
		return Track{}, err
	}
	slog.Info("document uploaded", "track id", id, "file", fileName, "status", doc.Status, "error", doc.Error)
	return t, nil
}

// Segment regenerates the passages from the processed document.
func (s *Service) Segment(ctx context.Context, id string) (Track, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, err
	}
	if !t.Document.Ready() {
		return Track{}, fmt.Errorf("%w: %s", ErrDocumentNotReady, id)
	}

	previous := t.Passages
	t.Passages = s.segmenter.Segment(t.Document.Content, t.ID)
	if t.Passages == nil {
		t.Passages = []passage.Passage{}
	}
	t.Concepts = concept.PruneForRemovedPassages(t.Concepts, removedIDs(previous, t.Passages)...)

	if err := s.save(ctx, &t); err != nil {
		return Track{}, err
	}
	slog.Info("passages generated", "track id", id, "passages", len(t.Passages), "previous", len(previous))
	return t, nil
}

func (s *Service) EditPassage(ctx context.Context, id string, passageID string, text string) (Track, error) {
	return s.mutatePassages(ctx, id, "edit", passageID, func(passages []passage.Passage) ([]passage.Passage, error) {
		return s.editor.Edit(passages, passageID, text), nil
	})
}

func (s *Service) SplitPassage(ctx context.Context, id string, passageID string, cut int) (Track, error) {
	return s.mutatePassages(ctx, id, "split", passageID, func(passages []passage.Passage) ([]passage.Passage, error) {
		return s.editor.Split(passages, passageID, cut)
	})
}

// MergePassage joins a passage with the next one.
func (s *Service) MergePassage(ctx context.Context, id string, passageID string) (Track, error) {
	return s.mutatePassages(ctx, id, "merge", passageID, func(passages []passage.Passage) ([]passage.Passage, error) {
		result, _ := s.editor.MergeWithNext(passages, passageID)
		return result, nil
	})
}

func (s *Service) MovePassage(ctx context.Context, id string, passageID string, direction passage.Direction) (Track, error) {
	return s.mutatePassages(ctx, id, "move", passageID, func(passages []passage.Passage) ([]passage.Passage, error) {
		return s.editor.Move(passages, passageID, direction), nil
	})
}

func (s *Service) DeletePassage(ctx context.Context, id string, passageID string) (Track, error) {
	return s.mutatePassages(ctx, id, "delete", passageID, func(passages []passage.Passage) ([]passage.Passage, error) {
		return s.editor.Delete(passages, passageID), nil
	})
}

func (s *Service) mutatePassages(
	ctx context.Context,
	id string,
	operation string,
	passageID string,
	apply func([]passage.Passage) ([]passage.Passage, error),
) (Track, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, err
	}

	previous := t.Passages
	passages, err := apply(previous)
	if err != nil {
		return Track{}, err
	}
	t.Passages = passages
	t.Concepts = concept.PruneForRemovedPassages(t.Concepts, removedIDs(previous, passages)...)

	if err := s.save(ctx, &t); err != nil {
		return Track{}, err
	}
	slog.Debug("passage updated", "track id", id, "operation", operation, "passage id", passageID)
	return t, nil
}

// UpdateChapter changes the fields set in update on one chapter of the outline.
func (s *Service) UpdateChapter(ctx context.Context, id string, chapterID string, update chapter.Update) (Track, error) {
	return s.mutateChapters(ctx, id, "update", chapterID, func(chapters []chapter.Chapter) ([]chapter.Chapter, error) {
		return chapter.Apply(chapters, chapterID, update)
	})
}

// MoveChapter swaps a chapter with its neighbour. Moving past either end of the outline changes nothing.
func (s *Service) MoveChapter(ctx context.Context, id string, chapterID string, direction passage.Direction) (Track, error) {
	return s.mutateChapters(ctx, id, "move", chapterID, func(chapters []chapter.Chapter) ([]chapter.Chapter, error) {
		return chapter.Move(chapters, chapterID, direction)
	})
}

func (s *Service) mutateChapters(
	ctx context.Context,
	id string,
	operation string,
	chapterID string,
	apply func([]chapter.Chapter) ([]chapter.Chapter, error),
) (Track, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, err
	}

	chapters, err := apply(t.Chapters)
	if err != nil {
		return Track{}, err
	}
	t.Chapters = chapters

	if err := s.save(ctx, &t); err != nil {
		return Track{}, err
	}
	slog.Debug("chapter updated", "track id", id, "operation", operation, "chapter id", chapterID)
	return t, nil
}

// ExtractConcepts scans the passages and merges new candidates into the track's concepts.
// It returns the number of candidates found, which is zero when nothing matched.
func (s *Service) ExtractConcepts(ctx context.Context, id string) (Track, int, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, 0, err
	}

	candidates := s.extractor.Extract(t.Passages, t.ID)
	if len(candidates) == 0 {
		slog.Info("no concept detected", "track id", id)
		return t, 0, nil
	}

	t.Concepts = concept.Merge(t.Concepts, candidates)
	if err := s.save(ctx, &t); err != nil {
		return Track{}, 0, err
	}
	slog.Info("concepts extracted", "track id", id, "candidates", len(candidates), "concepts", len(t.Concepts))
	return t, len(candidates), nil
}

func (s *Service) SetConceptStatus(ctx context.Context, id string, conceptID string, status concept.Status) (Track, error) {
	return s.mutateConcept(ctx, id, conceptID, func(c concept.Concept, _ map[string]bool) (concept.Concept, error) {
		if status == concept.StatusValidated && len(c.PassageIDs) == 0 {
			return c, fmt.Errorf("%w: %s", concept.ErrEmptyValidated, c.Name)
		}
		return concept.SetStatus(c, status), nil
	})
}

func (s *Service) LinkConceptPassage(ctx context.Context, id string, conceptID string, passageID string) (Track, error) {
	return s.mutateConcept(ctx, id, conceptID, func(c concept.Concept, available map[string]bool) (concept.Concept, error) {
		return concept.AddPassage(c, passageID, available)
	})
}

// UnlinkConceptPassage removes a passage from a concept. A concept left without passages is dropped.
func (s *Service) UnlinkConceptPassage(ctx context.Context, id string, conceptID string, passageID string) (Track, error) {
	return s.mutateConcept(ctx, id, conceptID, func(c concept.Concept, available map[string]bool) (concept.Concept, error) {
		return concept.RemovePassage(c, passageID, available)
	})
}

func (s *Service) mutateConcept(
	ctx context.Context,
	id string,
	conceptID string,
	apply func(concept.Concept, map[string]bool) (concept.Concept, error),
) (Track, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Track{}, err
	}
	position := concept.Find(t.Concepts, conceptID)
	if position == -1 {
		return Track{}, fmt.Errorf("%w: %s", concept.ErrConceptNotFound, conceptID)
	}

	available := t.PassageSet()
	current := t.Concepts[position]
	current.PassageIDs = concept.EnsurePassageIDs(current.PassageIDs, available)
	updated, err := apply(current, available)
	if err != nil {
		return Track{}, err
	}

	concepts := make([]concept.Concept, len(t.Concepts))
	copy(concepts, t.Concepts)
	concepts[position] = updated
	t.Concepts = concept.DropUngrounded(concepts)

	if err := s.save(ctx, &t); err != nil {
		return Track{}, err
	}
	slog.Debug("concept updated", "track id", id, "concept id", conceptID, "status", updated.Status)
	return t, nil
}

// Confirmation tells whether operation on the track, and optionally one of its passages, needs confirmation.
func (s *Service) Confirmation(ctx context.Context, id string, operation confirm.Operation, passageID string) (confirm.Decision, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return confirm.Decision{}, err
	}

	switch operation {
	case confirm.OperationRegenerate:
		return confirm.Regenerate(t.Passages), nil
	case confirm.OperationReplaceDocument:
		return confirm.ReplaceDocument(t.Document), nil
	case confirm.OperationDeletePassage, confirm.OperationMergePassages:
		ordered := passage.Sorted(t.Passages)
		position := -1
		for i, p := range ordered {
			if p.ID == passageID {
				position = i
				break
			}
		}
		if position == -1 {
			return confirm.Decision{}, fmt.Errorf("%w: %s", ErrPassageNotFound, passageID)
		}
		if operation == confirm.OperationDeletePassage {
			return confirm.DeletePassage(ordered[position]), nil
		}
		if position == len(ordered)-1 {
			return confirm.Decision{}, nil
		}
		return confirm.MergePassages(ordered[position], ordered[position+1]), nil
	}
	return confirm.Decision{}, fmt.Errorf("%w: %q", ErrUnknownOperation, operation)
}

func (s *Service) save(ctx context.Context, t *Track) error {
	t.UpdatedAt = s.Now().UTC()
	if err := s.repo.Save(ctx, *t); err != nil {
		return fmt.Errorf("save track %s: %w", t.ID, err)
	}
	return nil
}

// removedIDs returns the ids of before that are missing from after.
func removedIDs(before, after []passage.Passage) []string {
	kept := make(map[string]bool, len(after))
	for _, p := range after {
		kept[p.ID] = true
	}
	var removed []string
	for _, p := range before {
		if !kept[p.ID] {
			removed = append(removed, p.ID)
		}
	}
	return removed
}
