package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionStatus represents where a question sits in the audit lifecycle.
// PENDING means the question has not been audited yet (or the audit did not
// complete). After a human QC decision the status becomes terminal APPROVED
// (locked) or re-auditable REJECTED.
type QuestionStatus string

const (
	StatusPending         QuestionStatus = "PENDING"
	StatusNeedsCorrection QuestionStatus = "NEEDS_CORRECTION"
	StatusApproved        QuestionStatus = "APPROVED"
	StatusRejected        QuestionStatus = "REJECTED"
)

// Valid reports whether s is a known question status.
func (s QuestionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusNeedsCorrection, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// AuditLogType categorizes a flagged issue.
type AuditLogType string

const (
	LogConceptual  AuditLogType = "CONCEPTUAL"
	LogNumerical   AuditLogType = "NUMERICAL"
	LogLogical     AuditLogType = "LOGICAL"
	LogGrammatical AuditLogType = "GRAMMATICAL"
)

// Severity grades how serious a flagged issue is.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// AuditLog is one issue flagged by the audit engine. Logs are immutable once
// attached to a question's audited revision; a re-audit replaces the whole
// list, never appends.
type AuditLog struct {
	Type     AuditLogType `json:"type"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
}

// ChoiceSet holds the options of a multiple-choice question. CorrectIndex
// must be a valid index into Options.
type ChoiceSet struct {
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// QuestionContent is one revision of a question's content. Choices being nil
// is the variant tag: a nil ChoiceSet means a numerical/subjective question
// answered by the Answer string (which may be empty), a non-nil ChoiceSet
// means an MCQ answered by CorrectIndex.
type QuestionContent struct {
	Text     string     `json:"text"`
	Choices  *ChoiceSet `json:"choices,omitempty"`
	Answer   string     `json:"answer,omitempty"`
	Solution string     `json:"solution"`
}

// IsMultipleChoice reports whether the content carries an option set.
func (c QuestionContent) IsMultipleChoice() bool {
	return c.Choices != nil
}

// Validate checks the content against the submission rules: question text
// and solution are mandatory; options, when present, must be distinct,
// non-empty and indexed by a valid correct index.
func (c QuestionContent) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return NewValidationError("question text is required")
	}
	if strings.TrimSpace(c.Solution) == "" {
		return NewValidationError("solution text is required")
	}
	if c.Choices == nil {
		return nil
	}
	if len(c.Choices.Options) < 2 {
		return NewValidationError("a multiple-choice question needs at least two options")
	}
	seen := make(map[string]struct{}, len(c.Choices.Options))
	for i, opt := range c.Choices.Options {
		trimmed := strings.TrimSpace(opt)
		if trimmed == "" {
			return NewValidationError(fmt.Sprintf("option %d is empty", i+1))
		}
		if _, dup := seen[trimmed]; dup {
			return NewValidationError(fmt.Sprintf("option %q appears more than once", trimmed))
		}
		seen[trimmed] = struct{}{}
	}
	if c.Choices.CorrectIndex < 0 || c.Choices.CorrectIndex >= len(c.Choices.Options) {
		return NewValidationError(fmt.Sprintf("correct option index %d is out of range", c.Choices.CorrectIndex))
	}
	if c.Answer != "" {
		return NewValidationError("a question cannot carry both options and a correct-answer string")
	}
	return nil
}

// Clone returns a deep copy of the content.
func (c QuestionContent) Clone() QuestionContent {
	out := c
	if c.Choices != nil {
		cs := ChoiceSet{
			Options:      append([]string(nil), c.Choices.Options...),
			CorrectIndex: c.Choices.CorrectIndex,
		}
		out.Choices = &cs
	}
	return out
}

// Redlines carries the marked-up diff strings produced by the audit engine.
// A <del> span immediately followed by an <ins> span denotes a replacement;
// a bare <del> span denotes a pure removal; unmarked text is unchanged.
type Redlines struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Solution string   `json:"solution"`
}

// Clone returns a deep copy of the redlines.
func (r Redlines) Clone() Redlines {
	out := r
	if r.Options != nil {
		out.Options = append([]string(nil), r.Options...)
	}
	return out
}

// AuditedRevision is the v2 snapshot of a question: the redlined diff, the
// clean corrected content, and the flagged issues.
type AuditedRevision struct {
	Redlines Redlines        `json:"redlines"`
	Clean    QuestionContent `json:"clean"`
	Logs     []AuditLog      `json:"logs"`
}

func (a AuditedRevision) clone() AuditedRevision {
	return AuditedRevision{
		Redlines: a.Redlines.Clone(),
		Clean:    a.Clean.Clone(),
		Logs:     append([]AuditLog(nil), a.Logs...),
	}
}

// Question is a single exam question at some point in its audit lifecycle.
// Original (v1) is immutable once set; Audited (v2) appears after a
// successful audit; Approved (v3) appears when a human approves and acts as
// the lock marker — once non-nil, no further automated audit or content
// mutation is permitted.
type Question struct {
	ID           string           `json:"id"`
	Topic        string           `json:"topic"`
	Status       QuestionStatus   `json:"status"`
	Original     QuestionContent  `json:"original"`
	Audited      *AuditedRevision `json:"audited,omitempty"`
	Approved     *QuestionContent `json:"approved,omitempty"`
	Version      int              `json:"version"`
	LastModified time.Time        `json:"last_modified"`
}

// Locked reports whether the question has been approved and is thus
// terminal.
func (q Question) Locked() bool {
	return q.Approved != nil
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	out.Original = q.Original.Clone()
	if q.Audited != nil {
		rev := q.Audited.clone()
		out.Audited = &rev
	}
	if q.Approved != nil {
		snap := q.Approved.Clone()
		out.Approved = &snap
	}
	return out
}

const defaultTopic = "General"

// NewQuestion creates a question in its initial state: PENDING, version 1,
// no audit, no approval. The caller supplies the id (see util.NewULID) and
// persists the result.
func NewQuestion(id string, content QuestionContent, topic string) (Question, error) {
	if strings.TrimSpace(id) == "" {
		return Question{}, NewInvariantViolation("question id must be assigned at creation")
	}
	if err := content.Validate(); err != nil {
		return Question{}, err
	}
	if strings.TrimSpace(topic) == "" {
		topic = defaultTopic
	}
	return Question{
		ID:           id,
		Topic:        topic,
		Status:       StatusPending,
		Original:     content.Clone(),
		Version:      1,
		LastModified: time.Now(),
	}, nil
}

// ApplyAuditResult folds an audit engine result into the question. The
// audited revision is replaced wholesale — a re-audit of a not-yet-approved
// question discards the prior logs and redlines entirely. Auditing a locked
// question is a contract violation; the workflow layer must refuse the
// intent before it reaches this function.
func ApplyAuditResult(q Question, result AuditResult) (Question, error) {
	if q.Locked() {
		return Question{}, NewInvariantViolation("cannot audit locked question " + q.ID)
	}
	if err := result.Validate(); err != nil {
		return Question{}, err
	}
	next := q.Clone()
	next.Audited = &AuditedRevision{
		Redlines: result.Redlines.Clone(),
		Clean:    result.Clean.Clone(),
		Logs:     append([]AuditLog(nil), result.Logs...),
	}
	next.Status = result.Status
	if topic := strings.TrimSpace(result.Topic); topic != "" {
		next.Topic = topic
	}
	next.Version++
	next.LastModified = time.Now()
	return next, nil
}

// Approve locks the question: the clean audited content becomes the v3
// snapshot and the status becomes terminal APPROVED. Approving an already
// approved question is a no-op returning the same logical state — no second
// version bump. Approving an unaudited question is a contract violation.
func Approve(q Question) (Question, error) {
	if q.Locked() {
		return q.Clone(), nil
	}
	if q.Audited == nil {
		return Question{}, NewInvariantViolation("cannot approve unaudited question " + q.ID)
	}
	next := q.Clone()
	snap := q.Audited.Clean.Clone()
	next.Approved = &snap
	next.Status = StatusApproved
	next.Version++
	next.LastModified = time.Now()
	return next, nil
}

// Reject sends the question back to the correction cycle. The audited
// revision is preserved as resubmission context, so the question stays
// eligible for a fresh audit. Rejecting a locked question fails: approval
// is terminal.
func Reject(q Question) (Question, error) {
	if q.Locked() {
		return Question{}, NewInvariantViolation("cannot reject approved question " + q.ID)
	}
	if q.Audited == nil {
		return Question{}, NewInvariantViolation("cannot reject unaudited question " + q.ID)
	}
	next := q.Clone()
	next.Status = StatusRejected
	next.Version++
	next.LastModified = time.Now()
	return next, nil
}
