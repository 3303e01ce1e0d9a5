package track

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/passage"
)

const trackFileExtension = ".yml"

// YAMLRepository stores one YAML file per track in a directory.
type YAMLRepository struct {
	directory string
}

// NewYAMLRepository creates a new YAMLRepository.
func NewYAMLRepository(directory string) *YAMLRepository {
	return &YAMLRepository{directory: directory}
}

// FindAll reads every track file, oldest track first.
func (r *YAMLRepository) FindAll(ctx context.Context) ([]Track, error) {
	entries, err := os.ReadDir(r.directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Track{}, nil
		}
		return nil, fmt.Errorf("read track directory %s: %w", r.directory, err)
	}

	tracks := make([]Track, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != trackFileExtension {
			continue
		}
		t, err := readTrackFile(filepath.Join(r.directory, entry.Name()))
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].CreatedAt.Equal(tracks[j].CreatedAt) {
			return tracks[i].ID < tracks[j].ID
		}
		return tracks[i].CreatedAt.Before(tracks[j].CreatedAt)
	})
	return tracks, nil
}

func (r *YAMLRepository) Find(ctx context.Context, id string) (Track, error) {
	path, err := r.path(id)
	if err != nil {
		return Track{}, err
	}
	t, err := readTrackFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Track{}, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	return t, err
}

// Save writes the track to a temporary file and renames it over the previous version.
func (r *YAMLRepository) Save(ctx context.Context, t Track) error {
	path, err := r.path(t.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.directory, 0755); err != nil {
		return fmt.Errorf("create track directory %s: %w", r.directory, err)
	}

	tmp := path + ".tmp"
	if err := writeYAML(tmp, t); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write track %s: %w", t.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace track file %s: %w", path, err)
	}
	return nil
}

func (r *YAMLRepository) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrTrackNotFound, id)
	}
	return filepath.Join(r.directory, id+trackFileExtension), nil
}

func readTrackFile(path string) (Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return Track{}, fmt.Errorf("open track file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var t Track
	if err := yaml.NewDecoder(file).Decode(&t); err != nil {
		return Track{}, fmt.Errorf("decode track file %s: %w", path, err)
	}
	if t.Passages == nil {
		t.Passages = []passage.Passage{}
	}
	if t.Concepts == nil {
		t.Concepts = []concept.Concept{}
	}
	return t, nil
}

func writeYAML(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
