package dto

import (
	"time"

	"paperaudit/internal/domain"
)

// SubmitManualRequest is the body for a single manually entered question.
// Either Options+CorrectIndex (MCQ) or CorrectAnswer (numerical/subjective)
// is expected alongside the mandatory question and solution text.
type SubmitManualRequest struct {
	Topic         string   `json:"topic"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectIndex  *int     `json:"correct_index,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Solution      string   `json:"solution"`
	Subject       string   `json:"subject,omitempty"`
	CreatedBy     string   `json:"created_by,omitempty"`
}

// BulkTextRequest is the body for a bulk smart-paste submission.
type BulkTextRequest struct {
	Text      string `json:"text"`
	Subject   string `json:"subject,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// FileUpload carries one uploaded document through the bulk ingestion path.
type FileUpload struct {
	Name     string
	MimeType string
	Data     []byte
}

// BulkFailure reports one item of a batch that could not be ingested.
type BulkFailure struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// BulkReport summarizes a bulk submission: how many questions made it in
// and which items failed. One malformed item never aborts the batch.
type BulkReport struct {
	Ingested  int                `json:"ingested"`
	Questions []QuestionResponse `json:"questions"`
	Failures  []BulkFailure      `json:"failures,omitempty"`
}

// ContentResponse mirrors one content revision of a question.
type ContentResponse struct {
	Text         string   `json:"text"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Answer       string   `json:"answer,omitempty"`
	Solution     string   `json:"solution"`
}

// AuditLogResponse mirrors one flagged issue.
type AuditLogResponse struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// RedlinesResponse carries the marked-up diff strings.
type RedlinesResponse struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Solution string   `json:"solution"`
}

// AuditedResponse mirrors the v2 snapshot of a question.
type AuditedResponse struct {
	Redlines RedlinesResponse   `json:"redlines"`
	Clean    ContentResponse    `json:"clean"`
	Logs     []AuditLogResponse `json:"logs"`
}

// QuestionResponse mirrors a question and its version history.
type QuestionResponse struct {
	ID           string           `json:"id"`
	Topic        string           `json:"topic"`
	Status       string           `json:"status"`
	Original     ContentResponse  `json:"original"`
	Audited      *AuditedResponse `json:"audited,omitempty"`
	Approved     *ContentResponse `json:"approved,omitempty"`
	Version      int              `json:"version"`
	Locked       bool             `json:"locked"`
	LastModified time.Time        `json:"last_modified"`
}

// PaperResponse mirrors a full paper.
type PaperResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Subject    string             `json:"subject"`
	CreatedBy  string             `json:"created_by"`
	Status     string             `json:"status"`
	Questions  []QuestionResponse `json:"questions"`
	CreatedAt  time.Time          `json:"created_at"`
	ArchivedAt *time.Time         `json:"archived_at,omitempty"`
}

// PaperSummary is the compact archive listing entry.
type PaperSummary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Subject       string     `json:"subject"`
	Status        string     `json:"status"`
	QuestionCount int        `json:"question_count"`
	CreatedAt     time.Time  `json:"created_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}

func fromContent(c domain.QuestionContent) ContentResponse {
	out := ContentResponse{
		Text:     c.Text,
		Answer:   c.Answer,
		Solution: c.Solution,
	}
	if c.Choices != nil {
		out.Options = append([]string(nil), c.Choices.Options...)
		idx := c.Choices.CorrectIndex
		out.CorrectIndex = &idx
	}
	return out
}

func fromLogs(logs []domain.AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLogResponse{
			Type:     string(l.Type),
			Severity: string(l.Severity),
			Message:  l.Message,
		})
	}
	return out
}

// FromQuestion maps a domain question to its response shape.
func FromQuestion(q domain.Question) QuestionResponse {
	out := QuestionResponse{
		ID:           q.ID,
		Topic:        q.Topic,
		Status:       string(q.Status),
		Original:     fromContent(q.Original),
		Version:      q.Version,
		Locked:       q.Locked(),
		LastModified: q.LastModified,
	}
	if q.Audited != nil {
		out.Audited = &AuditedResponse{
			Redlines: RedlinesResponse{
				Question: q.Audited.Redlines.Question,
				Options:  append([]string(nil), q.Audited.Redlines.Options...),
				Answer:   q.Audited.Redlines.Answer,
				Solution: q.Audited.Redlines.Solution,
			},
			Clean: fromContent(q.Audited.Clean),
			Logs:  fromLogs(q.Audited.Logs),
		}
	}
	if q.Approved != nil {
		approved := fromContent(*q.Approved)
		out.Approved = &approved
	}
	return out
}

// FromPaper maps a domain paper to its response shape.
func FromPaper(p domain.Paper) PaperResponse {
	questions := make([]QuestionResponse, 0, len(p.Questions))
	for _, q := range p.Questions {
		questions = append(questions, FromQuestion(q))
	}
	return PaperResponse{
		ID:         p.ID,
		Title:      p.Title,
		Subject:    p.Subject,
		CreatedBy:  p.CreatedBy,
		Status:     string(p.Status),
		Questions:  questions,
		CreatedAt:  p.CreatedAt,
		ArchivedAt: p.ArchivedAt,
	}
}

// SummarizePaper maps a domain paper to its archive listing entry.
func SummarizePaper(p domain.Paper) PaperSummary {
	return PaperSummary{
		ID:            p.ID,
		Title:         p.Title,
		Subject:       p.Subject,
		Status:        string(p.Status),
		QuestionCount: len(p.Questions),
		CreatedAt:     p.CreatedAt,
		ArchivedAt:    p.ArchivedAt,
	}
}
