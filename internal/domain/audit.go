package domain

import "context"

// AuditResult is the structured outcome of one external audit call. Status
// is the engine's advisory verdict (not a human decision); Original is the
// question content as the engine parsed it from the source material; Clean
// is the corrected, exam-ready content.
type AuditResult struct {
	Status   QuestionStatus  `json:"status"`
	Topic    string          `json:"topic,omitempty"`
	Logs     []AuditLog      `json:"logs"`
	Redlines Redlines        `json:"redlines"`
	Original QuestionContent `json:"original"`
	Clean    QuestionContent `json:"clean"`
}

// Validate checks that the result is well formed enough to fold into a
// question.
func (r AuditResult) Validate() error {
	if !r.Status.Valid() {
		return NewValidationError("audit result carries unknown status " + string(r.Status))
	}
	if err := r.Clean.Validate(); err != nil {
		return NewValidationError("audit result clean content is invalid: " + err.Error())
	}
	return nil
}

// AuditClient wraps the external audit engine. Implementations must request
// the most deterministic mode the engine offers: the audit is a correctness
// check, not a creative rewrite.
type AuditClient interface {
	// AuditQuestion audits a single structured question.
	AuditQuestion(ctx context.Context, content QuestionContent) (*AuditResult, error)

	// AuditRaw audits free-form pasted text that may contain several
	// questions; boundary detection between questions is the engine's
	// responsibility.
	AuditRaw(ctx context.Context, text string) ([]AuditResult, error)

	// AuditDocument audits a binary document (PDF, image) the engine can
	// ingest natively, bypassing local text extraction.
	AuditDocument(ctx context.Context, data []byte, mimeType string) ([]AuditResult, error)
}

// ExtractionClient wraps local document-to-text extraction for text-bearing
// formats. Binary formats the audit engine ingests natively bypass this.
type ExtractionClient interface {
	// Supports reports whether ExtractText can handle the mime type.
	Supports(mimeType string) bool

	// ExtractText returns the plain text content of the document.
	ExtractText(data []byte, mimeType string) (string, error)
}
