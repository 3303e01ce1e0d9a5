package track

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/database"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
)

// trackRecord is a row of the tracks table. The document is flattened into nullable columns.
type trackRecord struct {
	ID                 string         `db:"id"`
	Title              string         `db:"title"`
	Description        sql.NullString `db:"description"`
	Level              string         `db:"level"`
	ChaptersCount      int            `db:"chapters_count"`
	DocumentFileName   sql.NullString `db:"document_file_name"`
	DocumentUploadedAt sql.NullTime   `db:"document_uploaded_at"`
	DocumentStatus     sql.NullString `db:"document_status"`
	DocumentContent    sql.NullString `db:"document_content"`
	DocumentError      sql.NullString `db:"document_error"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

type conceptPassageRecord struct {
	ConceptID string `db:"concept_id"`
	PassageID string `db:"passage_id"`
	SortOrder int    `db:"sort_order"`
}

const (
	selectChaptersQuery = "SELECT * FROM chapters WHERE track_id = ? ORDER BY position"
	selectPassagesQuery = "SELECT * FROM passages WHERE track_id = ? ORDER BY position"
	selectConceptsQuery = "SELECT id, track_id, name, definition, status, created_at FROM concepts WHERE track_id = ? ORDER BY sort_order"
)

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindAll returns every track with its chapters, passages and concepts, oldest first.
func (r *DBRepository) FindAll(ctx context.Context) ([]Track, error) {
	var records []trackRecord
	if err := r.db.SelectContext(ctx, &records, "SELECT * FROM tracks ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("load all tracks: %w", err)
	}

	tracks := make([]Track, 0, len(records))
	for _, record := range records {
		t, err := r.loadRelations(ctx, record)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func (r *DBRepository) Find(ctx context.Context, id string) (Track, error) {
	var record trackRecord
	if err := r.db.GetContext(ctx, &record, "SELECT * FROM tracks WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Track{}, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
		}
		return Track{}, fmt.Errorf("load track %s: %w", id, err)
	}
	return r.loadRelations(ctx, record)
}

// Save upserts the track row and replaces its chapters, passages and concepts in a single transaction.
func (r *DBRepository) Save(ctx context.Context, t Track) error {
	record := toTrackRecord(t)

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO tracks (
	id, title, description, level, chapters_count,
	document_file_name, document_uploaded_at, document_status, document_content, document_error,
	created_at, updated_at
) VALUES (
	:id, :title, :description, :level, :chapters_count,
	:document_file_name, :document_uploaded_at, :document_status, :document_content, :document_error,
	:created_at, :updated_at
) ON DUPLICATE KEY UPDATE
	title = VALUES(title), description = VALUES(description), level = VALUES(level),
	chapters_count = VALUES(chapters_count), document_file_name = VALUES(document_file_name),
	document_uploaded_at = VALUES(document_uploaded_at), document_status = VALUES(document_status),
	document_content = VALUES(document_content), document_error = VALUES(document_error),
	updated_at = VALUES(updated_at)`, record); err != nil {
			return fmt.Errorf("upsert track: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE track_id = ?", t.ID); err != nil {
			return fmt.Errorf("delete chapters: %w", err)
		}
		if len(t.Chapters) > 0 {
			query := buildMultiRowInsert(
				"chapters",
				[]string{"id", "track_id", "position", "title", "objectives", "status"},
				len(t.Chapters),
			)
			var args []interface{}
			for _, c := range t.Chapters {
				args = append(args, c.ID, t.ID, c.Index, c.Title, c.Objectives, c.Status)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert chapters: %w", err)
			}
		}

		// concept_passages rows go with their concepts through ON DELETE CASCADE
		if _, err := tx.ExecContext(ctx, "DELETE FROM concepts WHERE track_id = ?", t.ID); err != nil {
			return fmt.Errorf("delete concepts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM passages WHERE track_id = ?", t.ID); err != nil {
			return fmt.Errorf("delete passages: %w", err)
		}

		if len(t.Passages) > 0 {
			query := buildMultiRowInsert(
				"passages",
				[]string{"id", "track_id", "position", "text", "char_start", "char_end", "hash", "is_manual", "created_at", "updated_at"},
				len(t.Passages),
			)
			var args []interface{}
			for _, p := range t.Passages {
				args = append(args, p.ID, t.ID, p.Index, p.Text, p.CharStart, p.CharEnd, p.Hash, p.IsManual, p.CreatedAt, p.UpdatedAt)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert passages: %w", err)
			}
		}

		if len(t.Concepts) == 0 {
			return nil
		}
		query := buildMultiRowInsert(
			"concepts",
			[]string{"id", "track_id", "sort_order", "name", "definition", "status", "created_at"},
			len(t.Concepts),
		)
		var args []interface{}
		var linkArgs []interface{}
		var linkCount int
		for i, c := range t.Concepts {
			args = append(args, c.ID, t.ID, i, c.Name, c.Definition, c.Status, c.CreatedAt)
			for j, passageID := range c.PassageIDs {
				linkArgs = append(linkArgs, c.ID, passageID, j)
				linkCount++
			}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert concepts: %w", err)
		}
		if linkCount > 0 {
			q := buildMultiRowInsert("concept_passages", []string{"concept_id", "passage_id", "sort_order"}, linkCount)
			if _, err := tx.ExecContext(ctx, q, linkArgs...); err != nil {
				return fmt.Errorf("insert concept passages: %w", err)
			}
		}
		return nil
	})
}

// buildMultiRowInsert builds a multi-row INSERT query.
func buildMultiRowInsert(table string, columns []string, rowCount int) string {
	placeholder := "(" + strings.Repeat("?, ", len(columns)-1) + "?)"
	values := strings.Repeat(placeholder+", ", rowCount-1) + placeholder
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(columns, ", "), values)
}

func (r *DBRepository) loadRelations(ctx context.Context, record trackRecord) (Track, error) {
	t := fromTrackRecord(record)

	chapters := []chapter.Chapter{}
	if err := r.db.SelectContext(ctx, &chapters, selectChaptersQuery, record.ID); err != nil {
		return Track{}, fmt.Errorf("load chapters of track %s: %w", record.ID, err)
	}
	t.Chapters = chapters

	passages := []passage.Passage{}
	if err := r.db.SelectContext(ctx, &passages, selectPassagesQuery, record.ID); err != nil {
		return Track{}, fmt.Errorf("load passages of track %s: %w", record.ID, err)
	}
	t.Passages = passages

	concepts := []concept.Concept{}
	if err := r.db.SelectContext(ctx, &concepts, selectConceptsQuery, record.ID); err != nil {
		return Track{}, fmt.Errorf("load concepts of track %s: %w", record.ID, err)
	}
	t.Concepts = concepts
	if len(concepts) == 0 {
		return t, nil
	}

	conceptIDs := make([]string, len(concepts))
	conceptMap := make(map[string]*concept.Concept, len(concepts))
	for i := range concepts {
		conceptIDs[i] = concepts[i].ID
		conceptMap[concepts[i].ID] = &concepts[i]
	}

	query, args, err := sqlx.In("SELECT * FROM concept_passages WHERE concept_id IN (?) ORDER BY concept_id, sort_order", conceptIDs)
	if err != nil {
		return Track{}, fmt.Errorf("build concept passages query: %w", err)
	}
	var links []conceptPassageRecord
	if err := r.db.SelectContext(ctx, &links, r.db.Rebind(query), args...); err != nil {
		return Track{}, fmt.Errorf("load concept passages of track %s: %w", record.ID, err)
	}
	for _, link := range links {
		c := conceptMap[link.ConceptID]
		c.PassageIDs = append(c.PassageIDs, link.PassageID)
	}
	return t, nil
}

func toTrackRecord(t Track) trackRecord {
	record := trackRecord{
		ID:            t.ID,
		Title:         t.Title,
		Description:   sql.NullString{String: t.Description, Valid: t.Description != ""},
		Level:         string(t.Level),
		ChaptersCount: t.ChaptersCount,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if doc := t.Document; doc != nil {
		record.DocumentFileName = sql.NullString{String: doc.FileName, Valid: true}
		record.DocumentUploadedAt = sql.NullTime{Time: doc.UploadedAt, Valid: true}
		record.DocumentStatus = sql.NullString{String: string(doc.Status), Valid: true}
		record.DocumentContent = sql.NullString{String: doc.Content, Valid: true}
		record.DocumentError = sql.NullString{String: doc.Error, Valid: doc.Error != ""}
	}
	return record
}

func fromTrackRecord(record trackRecord) Track {
	t := Track{
		ID:            record.ID,
		Title:         record.Title,
		Description:   record.Description.String,
		Level:         Level(record.Level),
		ChaptersCount: record.ChaptersCount,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
	if record.DocumentStatus.Valid {
		t.Document = &document.Document{
			FileName:   record.DocumentFileName.String,
			UploadedAt: record.DocumentUploadedAt.Time,
			Status:     document.Status(record.DocumentStatus.String),
			Content:    record.DocumentContent.String,
			Error:      record.DocumentError.String,
		}
	}
	return t
}
