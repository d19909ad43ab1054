package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"paperaudit/internal/domain"
)

// QuestionList stores a paper's question slice as a JSON document in a CLOB
// column.
type QuestionList []domain.Question

// Value implements the driver.Valuer interface.
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface.
func (q *QuestionList) Scan(value interface{}) error {
	if value == nil {
		*q = QuestionList{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("QuestionList Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*q = QuestionList{}
		return nil
	}
	return json.Unmarshal(bytesToParse, q)
}

// Paper is the database row shape for a paper record.
type Paper struct {
	ID         string       `db:"id"`
	Title      string       `db:"title"`
	Subject    string       `db:"subject"`
	CreatedBy  string       `db:"created_by"`
	Status     string       `db:"status"`
	Questions  QuestionList `db:"questions"`
	CreatedAt  time.Time    `db:"created_at"`
	ArchivedAt sql.NullTime `db:"archived_at"`
}

// ToDomain converts the row to its domain shape.
func (p *Paper) ToDomain() domain.Paper {
	out := domain.Paper{
		ID:        p.ID,
		Title:     p.Title,
		Subject:   p.Subject,
		CreatedBy: p.CreatedBy,
		Status:    domain.PaperStatus(p.Status),
		Questions: []domain.Question(p.Questions),
		CreatedAt: p.CreatedAt,
	}
	if p.ArchivedAt.Valid {
		at := p.ArchivedAt.Time
		out.ArchivedAt = &at
	}
	return out
}

// FromDomain converts a domain paper to its row shape.
func FromDomain(paper *domain.Paper) *Paper {
	row := &Paper{
		ID:        paper.ID,
		Title:     paper.Title,
		Subject:   paper.Subject,
		CreatedBy: paper.CreatedBy,
		Status:    string(paper.Status),
		Questions: QuestionList(paper.Questions),
		CreatedAt: paper.CreatedAt,
	}
	if paper.ArchivedAt != nil {
		row.ArchivedAt = sql.NullTime{Time: *paper.ArchivedAt, Valid: true}
	}
	return row
}
