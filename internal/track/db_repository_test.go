package track

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
)

var (
	trackColumns = []string{
		"id", "title", "description", "level", "chapters_count",
		"document_file_name", "document_uploaded_at", "document_status", "document_content", "document_error",
		"created_at", "updated_at",
	}
	passageColumns = []string{
		"id", "track_id", "position", "text", "char_start", "char_end", "hash", "is_manual", "created_at", "updated_at",
	}
	chapterColumns        = []string{"id", "track_id", "position", "title", "objectives", "status"}
	conceptColumns        = []string{"id", "track_id", "name", "definition", "status", "created_at"}
	conceptPassageColumns = []string{"concept_id", "passage_id", "sort_order"}
)

func newMockRepository(t *testing.T) (*DBRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDBRepository(sqlx.NewDb(db, "mysql")), mock
}

func TestDBRepository_Find(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	text := "La mitose est une étape de la division cellulaire."

	tests := []struct {
		name       string
		setupMock  func(mock sqlmock.Sqlmock)
		want       Track
		wantErr    error
		wantAnyErr bool
	}{
		{
			name: "track with document, passages and concepts",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tracks WHERE id = \\?").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(trackColumns).
						AddRow("t1", "Biologie", nil, "A", 2, "cours.txt", now, "processed", text, nil, now, now))
				mock.ExpectQuery("SELECT \\* FROM chapters WHERE track_id = \\? ORDER BY position").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(chapterColumns).
						AddRow("chapter-t1-1", "t1", 1, "La cellule", "Décrire la cellule.", "validated").
						AddRow("chapter-t1-2", "t1", 2, "", "", "draft"))
				mock.ExpectQuery("SELECT \\* FROM passages WHERE track_id = \\? ORDER BY position").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(passageColumns).
						AddRow("p1", "t1", 1, text, 0, 51, passage.Hash(text), false, now, now).
						AddRow("p2", "t1", 2, "Suite.", nil, nil, passage.Hash("Suite."), true, now, now))
				mock.ExpectQuery("SELECT id, track_id, name, definition, status, created_at FROM concepts WHERE track_id = \\? ORDER BY sort_order").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(conceptColumns).
						AddRow("c1", "t1", "La mitose", text, "validated", now))
				mock.ExpectQuery("SELECT \\* FROM concept_passages WHERE concept_id IN \\(\\?\\) ORDER BY concept_id, sort_order").
					WithArgs("c1").
					WillReturnRows(sqlmock.NewRows(conceptPassageColumns).
						AddRow("c1", "p1", 0).
						AddRow("c1", "p2", 1))
			},
			want: Track{
				ID:            "t1",
				Title:         "Biologie",
				Level:         LevelA,
				ChaptersCount: 2,
				Chapters: []chapter.Chapter{
					{ID: "chapter-t1-1", TrackID: "t1", Index: 1, Title: "La cellule", Objectives: "Décrire la cellule.", Status: chapter.StatusValidated},
					{ID: "chapter-t1-2", TrackID: "t1", Index: 2, Status: chapter.StatusDraft},
				},
				Document: &document.Document{
					FileName:   "cours.txt",
					UploadedAt: now,
					Status:     document.StatusProcessed,
					Content:    text,
				},
				Passages: []passage.Passage{
					{ID: "p1", TrackID: "t1", Index: 1, Text: text, CharStart: intPtr(0), CharEnd: intPtr(51), Hash: passage.Hash(text), CreatedAt: now, UpdatedAt: now},
					{ID: "p2", TrackID: "t1", Index: 2, Text: "Suite.", Hash: passage.Hash("Suite."), IsManual: true, CreatedAt: now, UpdatedAt: now},
				},
				Concepts: []concept.Concept{
					{ID: "c1", TrackID: "t1", Name: "La mitose", Definition: text, Status: concept.StatusValidated, PassageIDs: []string{"p1", "p2"}, CreatedAt: now},
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		{
			name: "new track without document",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tracks WHERE id = \\?").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(trackColumns).
						AddRow("t1", "Biologie", "Chapitre 1", "B", 1, nil, nil, nil, nil, nil, now, now))
				mock.ExpectQuery("SELECT \\* FROM chapters").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(chapterColumns).AddRow("chapter-t1-1", "t1", 1, "", "", "draft"))
				mock.ExpectQuery("SELECT \\* FROM passages").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(passageColumns))
				mock.ExpectQuery("SELECT id, track_id, name, definition, status, created_at FROM concepts").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(conceptColumns))
			},
			want: Track{
				ID:            "t1",
				Title:         "Biologie",
				Description:   "Chapitre 1",
				Level:         LevelB,
				ChaptersCount: 1,
				Chapters:      []chapter.Chapter{{ID: "chapter-t1-1", TrackID: "t1", Index: 1, Status: chapter.StatusDraft}},
				Passages:      []passage.Passage{},
				Concepts:      []concept.Concept{},
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		{
			name: "missing track",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tracks WHERE id = \\?").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(trackColumns))
			},
			wantErr: ErrTrackNotFound,
		},
		{
			name: "load passages db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tracks WHERE id = \\?").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(trackColumns).
						AddRow("t1", "Biologie", nil, "A", 1, nil, nil, nil, nil, nil, now, now))
				mock.ExpectQuery("SELECT \\* FROM chapters").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(chapterColumns))
				mock.ExpectQuery("SELECT \\* FROM passages").
					WithArgs("t1").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantAnyErr: true,
		},
		{
			name: "load chapters db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tracks WHERE id = \\?").
					WithArgs("t1").
					WillReturnRows(sqlmock.NewRows(trackColumns).
						AddRow("t1", "Biologie", nil, "A", 1, nil, nil, nil, nil, nil, now, now))
				mock.ExpectQuery("SELECT \\* FROM chapters").
					WithArgs("t1").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			got, err := repo.Find(context.Background(), "t1")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_FindAll(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT \\* FROM tracks ORDER BY created_at, id").
		WillReturnRows(sqlmock.NewRows(trackColumns).
			AddRow("t1", "Biologie", nil, "A", 1, nil, nil, nil, nil, nil, now, now).
			AddRow("t2", "Chimie", nil, "B", 1, nil, nil, nil, nil, nil, now, now))
	for _, id := range []string{"t1", "t2"} {
		mock.ExpectQuery("SELECT \\* FROM chapters").WithArgs(id).WillReturnRows(sqlmock.NewRows(chapterColumns))
		mock.ExpectQuery("SELECT \\* FROM passages").WithArgs(id).WillReturnRows(sqlmock.NewRows(passageColumns))
		mock.ExpectQuery("SELECT id, track_id, name, definition, status, created_at FROM concepts").WithArgs(id).WillReturnRows(sqlmock.NewRows(conceptColumns))
	}

	got, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "Chimie", got[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_Save(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	saved := Track{
		ID:            "t1",
		Title:         "Biologie",
		Level:         LevelA,
		ChaptersCount: 2,
		Chapters: []chapter.Chapter{
			{ID: "chapter-t1-1", TrackID: "t1", Index: 1, Title: "La cellule", Status: chapter.StatusValidated},
			{ID: "chapter-t1-2", TrackID: "t1", Index: 2, Status: chapter.StatusDraft},
		},
		Document: &document.Document{FileName: "cours.txt", UploadedAt: now, Status: document.StatusProcessed, Content: "Un. Deux."},
		Passages: []passage.Passage{
			{ID: "p1", TrackID: "t1", Index: 1, Text: "Un.", Hash: passage.Hash("Un."), CreatedAt: now, UpdatedAt: now},
			{ID: "p2", TrackID: "t1", Index: 2, Text: "Deux.", Hash: passage.Hash("Deux."), CreatedAt: now, UpdatedAt: now},
		},
		Concepts: []concept.Concept{
			{ID: "c1", TrackID: "t1", Name: "Un", Definition: "Un.", Status: concept.StatusProposed, PassageIDs: []string{"p1", "p2"}, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	tests := []struct {
		name      string
		track     Track
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name:  "replaces chapters, passages and concepts",
			track: saved,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO tracks").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM chapters WHERE track_id = \\?").
					WithArgs("t1").
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO chapters \\(id, track_id, position, title, objectives, status\\) VALUES").
					WithArgs("chapter-t1-1", "t1", 1, "La cellule", "", "validated", "chapter-t1-2", "t1", 2, "", "", "draft").
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("DELETE FROM concepts WHERE track_id = \\?").
					WithArgs("t1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM passages WHERE track_id = \\?").
					WithArgs("t1").
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO passages \\(id, track_id, position, text, char_start, char_end, hash, is_manual, created_at, updated_at\\) VALUES").
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO concepts \\(id, track_id, sort_order, name, definition, status, created_at\\) VALUES").
					WithArgs("c1", "t1", 0, "Un", "Un.", "proposed", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO concept_passages").
					WithArgs("c1", "p1", 0, "c1", "p2", 1).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
		},
		{
			name:  "empty track only clears its relations",
			track: Track{ID: "t1", Title: "Biologie", Level: LevelA, CreatedAt: now, UpdatedAt: now},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO tracks").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM chapters").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM concepts").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("DELETE FROM passages").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
		},
		{
			name:  "insert passages error rolls back",
			track: saved,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO tracks").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM chapters").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO chapters").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("DELETE FROM concepts").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("DELETE FROM passages").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec("INSERT INTO passages").WillReturnError(fmt.Errorf("duplicate entry"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			err := repo.Save(context.Background(), tt.track)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBuildMultiRowInsert(t *testing.T) {
	got := buildMultiRowInsert("concept_passages", []string{"concept_id", "passage_id", "sort_order"}, 2)
	assert.Equal(t, "INSERT INTO concept_passages (concept_id, passage_id, sort_order) VALUES (?, ?, ?), (?, ?, ?)", got)
}

func intPtr(v int) *int {
	return &v
}
