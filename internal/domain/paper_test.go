package domain

import (
	"fmt"
	"testing"
)

func pendingQuestion(id string) Question {
	q, _ := NewQuestion(id, QuestionContent{Text: "q" + id, Solution: "s"}, "Topic "+id)
	return q
}

func auditedQuestion(id string, status QuestionStatus) Question {
	q := pendingQuestion(id)
	content := q.Original
	out, _ := ApplyAuditResult(q, AuditResult{
		Status:   status,
		Redlines: Redlines{Question: content.Text, Solution: content.Solution},
		Original: content,
		Clean:    content,
	})
	return out
}

func approvedQuestion(id string) Question {
	q := auditedQuestion(id, StatusApproved)
	out, _ := Approve(q)
	return out
}

func TestDerivePaperStatus(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
		want      PaperStatus
	}{
		{"empty paper", nil, PaperDraft},
		{"single pending", []Question{pendingQuestion("a")}, PaperInReview},
		{
			"mixed pending and audited",
			[]Question{pendingQuestion("a"), auditedQuestion("b", StatusNeedsCorrection)},
			PaperInReview,
		},
		{
			"all audited none approved",
			[]Question{auditedQuestion("a", StatusNeedsCorrection), auditedQuestion("b", StatusRejected)},
			PaperPendingQC,
		},
		{
			"all audited some approved",
			[]Question{auditedQuestion("a", StatusNeedsCorrection), approvedQuestion("b")},
			PaperPendingQC,
		},
		{
			"all approved",
			[]Question{approvedQuestion("a"), approvedQuestion("b")},
			PaperLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivePaperStatus(tt.questions); got != tt.want {
				t.Errorf("DerivePaperStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDerivePaperStatus_PureOverStatusMultiset(t *testing.T) {
	// two papers with the same question-status multiset but different ids
	// must derive the same paper status
	p1 := []Question{auditedQuestion("a1", StatusNeedsCorrection), approvedQuestion("b1")}
	p2 := []Question{approvedQuestion("b2"), auditedQuestion("a2", StatusNeedsCorrection)}
	if DerivePaperStatus(p1) != DerivePaperStatus(p2) {
		t.Error("paper status must be a pure function of question statuses, ignoring ids and order")
	}
}

func TestArchivePaper(t *testing.T) {
	active := Paper{
		ID:        "working",
		Subject:   "Physics",
		CreatedBy: "u1",
		Questions: []Question{auditedQuestion("a", StatusApproved)},
	}

	snapshot, history, evicted, err := ArchivePaper("snap1", active, nil, 5)
	if err != nil {
		t.Fatalf("ArchivePaper() error = %v", err)
	}
	if snapshot.Title != "Topic a" {
		t.Errorf("Title = %q, want topic of first question", snapshot.Title)
	}
	if !snapshot.Archived() {
		t.Error("snapshot must be marked archived")
	}
	if len(history) != 1 || history[0].ID != "snap1" {
		t.Errorf("history = %v, want the snapshot prepended", history)
	}
	if len(evicted) != 0 {
		t.Errorf("evicted = %v, want none", evicted)
	}
	if snapshot.Subject != "Physics" || snapshot.CreatedBy != "u1" {
		t.Error("snapshot must carry subject and submitter of the active paper")
	}
}

func TestArchivePaper_EmptySessionRejected(t *testing.T) {
	if _, _, _, err := ArchivePaper("snap1", Paper{ID: "working"}, nil, 5); err == nil {
		t.Error("archiving an empty session must be rejected")
	}
}

func TestArchivePaper_FallbackTitle(t *testing.T) {
	q := pendingQuestion("a")
	q.Topic = " "
	active := Paper{ID: "working", Questions: []Question{q}}
	snapshot, _, _, err := ArchivePaper("snap1", active, nil, 5)
	if err != nil {
		t.Fatalf("ArchivePaper() error = %v", err)
	}
	if snapshot.Title != fallbackPaperTitle {
		t.Errorf("Title = %q, want fallback", snapshot.Title)
	}
}

func TestArchivePaper_RetentionCap(t *testing.T) {
	active := Paper{ID: "working", Questions: []Question{pendingQuestion("a")}}

	var history []Paper
	var lastID string
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("snap%d", i)
		var err error
		_, history, _, err = ArchivePaper(id, active, history, 5)
		if err != nil {
			t.Fatalf("archive %d error = %v", i, err)
		}
		lastID = id
	}

	if len(history) != 5 {
		t.Fatalf("history length = %d, want exactly 5", len(history))
	}
	if history[0].ID != lastID {
		t.Errorf("history[0] = %s, want newest first (%s)", history[0].ID, lastID)
	}
	// the five most recent snapshots survive, oldest first evicted
	for i, p := range history {
		want := fmt.Sprintf("snap%d", 7-i)
		if p.ID != want {
			t.Errorf("history[%d] = %s, want %s", i, p.ID, want)
		}
	}
}

func TestArchivePaper_ReportsEvicted(t *testing.T) {
	active := Paper{ID: "working", Questions: []Question{pendingQuestion("a")}}

	var history []Paper
	for i := 0; i < 5; i++ {
		var err error
		_, history, _, err = ArchivePaper(fmt.Sprintf("snap%d", i), active, history, 5)
		if err != nil {
			t.Fatalf("archive %d error = %v", i, err)
		}
	}

	_, history, evicted, err := ArchivePaper("snap5", active, history, 5)
	if err != nil {
		t.Fatalf("ArchivePaper() error = %v", err)
	}
	if len(history) != 5 {
		t.Errorf("history length = %d, want 5", len(history))
	}
	if len(evicted) != 1 || evicted[0].ID != "snap0" {
		t.Errorf("evicted = %v, want the oldest entry snap0", evicted)
	}
}
