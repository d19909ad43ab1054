package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"paperaudit/internal/domain"
	"paperaudit/internal/repository/models"
)

// PaperDatabaseAdapter implements domain.PaperStore using sqlx.DB against
// Oracle.
type PaperDatabaseAdapter struct {
	db *sqlx.DB
}

// NewPaperDatabaseAdapter creates a new instance of PaperDatabaseAdapter
func NewPaperDatabaseAdapter(db *sqlx.DB) domain.PaperStore {
	return &PaperDatabaseAdapter{db: db}
}

const paperColumns = `
		id "id",
		title "title",
		subject "subject",
		created_by "created_by",
		status "status",
		questions "questions",
		created_at "created_at",
		archived_at "archived_at"`

// List implements domain.PaperStore
func (a *PaperDatabaseAdapter) List(ctx context.Context) ([]domain.Paper, error) {
	var rows []models.Paper
	query := `SELECT ` + paperColumns + `
	FROM papers
	ORDER BY created_at DESC`

	err := a.db.SelectContext(ctx, &rows, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return []domain.Paper{}, nil
		}
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}

	papers := make([]domain.Paper, len(rows))
	for i := range rows {
		papers[i] = rows[i].ToDomain()
	}
	return papers, nil
}

// GetByID implements domain.PaperStore
func (a *PaperDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.Paper, error) {
	var row models.Paper
	query := `SELECT ` + paperColumns + `
	FROM papers
	WHERE id = :1`

	err := a.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get paper by ID %s: %w", id, err)
	}

	paper := row.ToDomain()
	return &paper, nil
}

// Save implements domain.PaperStore. Oracle reports RowsAffected as 0 for
// MERGE, so the upsert is a single MERGE statement rather than an
// update-then-insert probe.
func (a *PaperDatabaseAdapter) Save(ctx context.Context, paper *domain.Paper) error {
	row := models.FromDomain(paper)

	query := `MERGE INTO papers p
	USING (SELECT :1 AS id FROM dual) src
	ON (p.id = src.id)
	WHEN MATCHED THEN UPDATE SET
		p.title = :2,
		p.subject = :3,
		p.created_by = :4,
		p.status = :5,
		p.questions = :6,
		p.created_at = :7,
		p.archived_at = :8
	WHEN NOT MATCHED THEN INSERT (
		id, title, subject, created_by, status, questions, created_at, archived_at
	) VALUES (
		:9, :10, :11, :12, :13, :14, :15, :16
	)`

	_, err := a.db.ExecContext(ctx, query,
		row.ID,
		row.Title, row.Subject, row.CreatedBy, row.Status, row.Questions, row.CreatedAt, row.ArchivedAt,
		row.ID, row.Title, row.Subject, row.CreatedBy, row.Status, row.Questions, row.CreatedAt, row.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save paper %s: %w", paper.ID, err)
	}
	return nil
}

// Delete implements domain.PaperStore
func (a *PaperDatabaseAdapter) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM papers WHERE id = :1`

	_, err := a.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete paper %s: %w", id, err)
	}
	return nil
}
