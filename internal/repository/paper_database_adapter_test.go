package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperaudit/internal/domain"
	"paperaudit/internal/repository/models"
)

// setupTestDB creates a new sqlx.DB instance and sqlmock for repository
// testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func samplePaper(archived bool) domain.Paper {
	now := time.Now().Truncate(time.Second)
	paper := domain.Paper{
		ID:        "01PAPER",
		Title:     "Arithmetic",
		Subject:   "Mathematics",
		CreatedBy: "prof.kim",
		Status:    domain.PaperInReview,
		Questions: []domain.Question{
			{
				ID:     "01Q",
				Topic:  "Arithmetic",
				Status: domain.StatusPending,
				Original: domain.QuestionContent{
					Text:     "What is 2+2?",
					Answer:   "4",
					Solution: "2+2=4",
				},
				Version:      1,
				LastModified: now,
			},
		},
		CreatedAt: now,
	}
	if archived {
		at := now
		paper.ArchivedAt = &at
	}
	return paper
}

func paperRows(t *testing.T, papers ...domain.Paper) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "title", "subject", "created_by", "status", "questions", "created_at", "archived_at",
	})
	for _, p := range papers {
		questions, err := json.Marshal(p.Questions)
		require.NoError(t, err)
		var archivedAt interface{}
		if p.ArchivedAt != nil {
			archivedAt = *p.ArchivedAt
		}
		rows.AddRow(p.ID, p.Title, p.Subject, p.CreatedBy, string(p.Status),
			string(questions), p.CreatedAt, archivedAt)
	}
	return rows
}

func TestPaperDatabaseAdapter_List(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	adapter := NewPaperDatabaseAdapter(db)

	working := samplePaper(false)
	archived := samplePaper(true)
	archived.ID = "01OLD"

	mock.ExpectQuery(`SELECT (.+) FROM papers ORDER BY created_at DESC`).
		WillReturnRows(paperRows(t, working, archived))

	papers, err := adapter.List(context.Background())
	require.NoError(t, err)

	require.Len(t, papers, 2)
	assert.Equal(t, "01PAPER", papers[0].ID)
	assert.False(t, papers[0].Archived())
	assert.True(t, papers[1].Archived())
	require.Len(t, papers[0].Questions, 1)
	assert.Equal(t, "What is 2+2?", papers[0].Questions[0].Original.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperDatabaseAdapter_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		adapter := NewPaperDatabaseAdapter(db)

		paper := samplePaper(true)
		mock.ExpectQuery(`SELECT (.+) FROM papers WHERE id = :1`).
			WithArgs("01PAPER").
			WillReturnRows(paperRows(t, paper))

		got, err := adapter.GetByID(context.Background(), "01PAPER")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, paper.ID, got.ID)
		assert.True(t, got.Archived())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent id returns nil without error", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		adapter := NewPaperDatabaseAdapter(db)

		mock.ExpectQuery(`SELECT (.+) FROM papers WHERE id = :1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := adapter.GetByID(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestPaperDatabaseAdapter_Save(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	adapter := NewPaperDatabaseAdapter(db)

	paper := samplePaper(false)
	mock.ExpectExec(`MERGE INTO papers`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Save(context.Background(), &paper)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperDatabaseAdapter_Delete(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	adapter := NewPaperDatabaseAdapter(db)

	mock.ExpectExec(`DELETE FROM papers WHERE id = :1`).
		WithArgs("01PAPER").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Delete(context.Background(), "01PAPER")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionListRoundTrip(t *testing.T) {
	paper := samplePaper(false)
	row := models.FromDomain(&paper)

	value, err := row.Questions.Value()
	require.NoError(t, err)

	var scanned models.QuestionList
	require.NoError(t, scanned.Scan(value))

	require.Len(t, scanned, 1)
	assert.Equal(t, paper.Questions[0].ID, scanned[0].ID)
	assert.Equal(t, paper.Questions[0].Original, scanned[0].Original)

	back := row.ToDomain()
	assert.Equal(t, paper.ID, back.ID)
	assert.Equal(t, paper.Status, back.Status)
	assert.Nil(t, back.ArchivedAt)
}

func TestQuestionListScanEdgeCases(t *testing.T) {
	var list models.QuestionList

	require.NoError(t, list.Scan(nil))
	assert.Empty(t, list)

	require.NoError(t, list.Scan("null"))
	assert.Empty(t, list)

	require.NoError(t, list.Scan([]byte{}))
	assert.Empty(t, list)

	assert.Error(t, list.Scan(42))
}
