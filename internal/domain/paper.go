package domain

import (
	"strings"
	"time"
)

// PaperStatus is derived from the statuses of a paper's questions; it is
// never set directly.
type PaperStatus string

const (
	PaperDraft     PaperStatus = "DRAFT"
	PaperInReview  PaperStatus = "IN_REVIEW"
	PaperPendingQC PaperStatus = "PENDING_QC"
	PaperLocked    PaperStatus = "LOCKED"
)

// Paper is a named collection of questions representing one submission
// session. Question order is insertion order and is meaningful for
// numbering. ArchivedAt is nil for the active working paper and set when
// the paper becomes an archive entry.
type Paper struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Subject    string      `json:"subject"`
	CreatedBy  string      `json:"created_by"`
	Status     PaperStatus `json:"status"`
	Questions  []Question  `json:"questions"`
	CreatedAt  time.Time   `json:"created_at"`
	ArchivedAt *time.Time  `json:"archived_at,omitempty"`
}

// Archived reports whether the paper is an archive entry.
func (p Paper) Archived() bool {
	return p.ArchivedAt != nil
}

// Clone returns a deep copy of the paper.
func (p Paper) Clone() Paper {
	out := p
	out.Questions = CloneQuestions(p.Questions)
	if p.ArchivedAt != nil {
		at := *p.ArchivedAt
		out.ArchivedAt = &at
	}
	return out
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(questions []Question) []Question {
	if questions == nil {
		return nil
	}
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}

// DerivePaperStatus computes the paper status as a pure function of the
// question list. Precedence: LOCKED (all approved) > PENDING_QC (all
// audited, not all approved) > IN_REVIEW (some question not yet audited) >
// DRAFT (no questions).
func DerivePaperStatus(questions []Question) PaperStatus {
	if len(questions) == 0 {
		return PaperDraft
	}
	allApproved := true
	allAudited := true
	for _, q := range questions {
		if q.Approved == nil {
			allApproved = false
		}
		if q.Audited == nil && q.Approved == nil {
			allAudited = false
		}
	}
	switch {
	case allApproved:
		return PaperLocked
	case allAudited:
		return PaperPendingQC
	default:
		return PaperInReview
	}
}

// DefaultRetention is the number of archive entries kept when no cap is
// configured.
const DefaultRetention = 5

const fallbackPaperTitle = "Untitled Paper"

// ArchivePaper snapshots the active paper into a new archive entry and
// prepends it to the history, enforcing the retention cap. The title is
// inferred from the first question's topic. Returns the snapshot, the new
// newest-first history, and the entries evicted past the cap so the caller
// can delete their records. Archiving an empty session is rejected.
func ArchivePaper(snapshotID string, active Paper, history []Paper, retentionCap int) (Paper, []Paper, []Paper, error) {
	if len(active.Questions) == 0 {
		return Paper{}, nil, nil, NewValidationError("cannot archive an empty session")
	}
	if strings.TrimSpace(snapshotID) == "" {
		return Paper{}, nil, nil, NewInvariantViolation("archive snapshot id must be assigned")
	}
	if retentionCap <= 0 {
		retentionCap = DefaultRetention
	}

	title := fallbackPaperTitle
	if topic := strings.TrimSpace(active.Questions[0].Topic); topic != "" {
		title = topic
	}

	now := time.Now()
	snapshot := Paper{
		ID:         snapshotID,
		Title:      title,
		Subject:    active.Subject,
		CreatedBy:  active.CreatedBy,
		Status:     DerivePaperStatus(active.Questions),
		Questions:  CloneQuestions(active.Questions),
		CreatedAt:  now,
		ArchivedAt: &now,
	}

	next := make([]Paper, 0, len(history)+1)
	next = append(next, snapshot)
	next = append(next, history...)

	var evicted []Paper
	if len(next) > retentionCap {
		evicted = next[retentionCap:]
		next = next[:retentionCap]
	}
	return snapshot, next, evicted, nil
}
