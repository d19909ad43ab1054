package domain

import (
	"testing"
)

func mcqContent() QuestionContent {
	return QuestionContent{
		Text: "What is 2+2?",
		Choices: &ChoiceSet{
			Options:      []string{"3", "4", "5", "6"},
			CorrectIndex: 1,
		},
		Solution: "2+2=4",
	}
}

func approvedResult(content QuestionContent) AuditResult {
	return AuditResult{
		Status:   StatusApproved,
		Logs:     []AuditLog{},
		Redlines: Redlines{Question: content.Text, Solution: content.Solution},
		Original: content,
		Clean:    content,
	}
}

func TestQuestionContent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content QuestionContent
		wantErr bool
	}{
		{"valid mcq", mcqContent(), false},
		{"valid numerical", QuestionContent{Text: "Integrate x dx", Answer: "x^2/2 + C", Solution: "Power rule"}, false},
		{"numerical with empty answer", QuestionContent{Text: "Prove it", Solution: "By induction"}, false},
		{"missing text", QuestionContent{Solution: "s"}, true},
		{"missing solution", QuestionContent{Text: "q"}, true},
		{
			"single option",
			QuestionContent{Text: "q", Solution: "s", Choices: &ChoiceSet{Options: []string{"only"}, CorrectIndex: 0}},
			true,
		},
		{
			"empty option",
			QuestionContent{Text: "q", Solution: "s", Choices: &ChoiceSet{Options: []string{"a", " "}, CorrectIndex: 0}},
			true,
		},
		{
			"duplicate options",
			QuestionContent{Text: "q", Solution: "s", Choices: &ChoiceSet{Options: []string{"a", "a"}, CorrectIndex: 0}},
			true,
		},
		{
			"correct index out of range",
			QuestionContent{Text: "q", Solution: "s", Choices: &ChoiceSet{Options: []string{"a", "b"}, CorrectIndex: 2}},
			true,
		},
		{
			"options and answer string together",
			QuestionContent{Text: "q", Solution: "s", Answer: "b", Choices: &ChoiceSet{Options: []string{"a", "b"}, CorrectIndex: 1}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.content.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewQuestion_InitialState(t *testing.T) {
	q, err := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")
	if err != nil {
		t.Fatalf("NewQuestion() error = %v", err)
	}
	if q.Status != StatusPending {
		t.Errorf("Status = %s, want %s", q.Status, StatusPending)
	}
	if q.Version != 1 {
		t.Errorf("Version = %d, want 1", q.Version)
	}
	if q.Audited != nil {
		t.Error("Audited should be nil on a fresh question")
	}
	if q.Approved != nil {
		t.Error("Approved should be nil on a fresh question")
	}
	if q.Topic != "Arithmetic" {
		t.Errorf("Topic = %s, want Arithmetic", q.Topic)
	}
}

func TestNewQuestion_EmptyTopicFallsBack(t *testing.T) {
	q, err := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "  ")
	if err != nil {
		t.Fatalf("NewQuestion() error = %v", err)
	}
	if q.Topic != defaultTopic {
		t.Errorf("Topic = %s, want %s", q.Topic, defaultTopic)
	}
}

func TestApplyAuditResult(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")

	result := approvedResult(mcqContent())
	result.Topic = "Basic Arithmetic"
	audited, err := ApplyAuditResult(q, result)
	if err != nil {
		t.Fatalf("ApplyAuditResult() error = %v", err)
	}
	if audited.Version != 2 {
		t.Errorf("Version = %d, want 2", audited.Version)
	}
	if audited.Status != StatusApproved {
		t.Errorf("Status = %s, want advisory %s", audited.Status, StatusApproved)
	}
	if audited.Audited == nil {
		t.Fatal("Audited should be populated")
	}
	if audited.Audited.Clean.Choices == nil || audited.Audited.Clean.Choices.CorrectIndex != 1 {
		t.Error("clean snapshot should carry the correct option index")
	}
	if audited.Topic != "Basic Arithmetic" {
		t.Errorf("Topic = %s, want override applied", audited.Topic)
	}
	// the input question is not mutated
	if q.Audited != nil || q.Version != 1 {
		t.Error("ApplyAuditResult must not mutate its input")
	}
}

func TestApplyAuditResult_ReauditReplaces(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")

	first := approvedResult(mcqContent())
	first.Status = StatusNeedsCorrection
	first.Logs = []AuditLog{{Type: LogNumerical, Severity: SeverityHigh, Message: "sum is wrong"}}

	second := approvedResult(mcqContent())
	second.Logs = []AuditLog{{Type: LogGrammatical, Severity: SeverityLow, Message: "typo"}}

	afterFirst, err := ApplyAuditResult(q, first)
	if err != nil {
		t.Fatalf("first audit error = %v", err)
	}
	afterBoth, err := ApplyAuditResult(afterFirst, second)
	if err != nil {
		t.Fatalf("second audit error = %v", err)
	}
	direct, err := ApplyAuditResult(q, second)
	if err != nil {
		t.Fatalf("direct audit error = %v", err)
	}

	if len(afterBoth.Audited.Logs) != 1 || afterBoth.Audited.Logs[0].Type != LogGrammatical {
		t.Errorf("re-audit must replace logs wholesale, got %v", afterBoth.Audited.Logs)
	}
	if afterBoth.Status != direct.Status {
		t.Errorf("re-audit status %s diverges from single-audit status %s", afterBoth.Status, direct.Status)
	}
	if len(direct.Audited.Logs) != len(afterBoth.Audited.Logs) {
		t.Error("audited revision after re-audit must equal a single audit of the same result")
	}
}

func TestApplyAuditResult_UnknownStatusRejected(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")
	result := approvedResult(mcqContent())
	result.Status = QuestionStatus("SOMETHING_ELSE")
	if _, err := ApplyAuditResult(q, result); err == nil {
		t.Error("expected error for unknown advisory status")
	}
}

func TestApprove_Idempotent(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")
	audited, _ := ApplyAuditResult(q, approvedResult(mcqContent()))

	once, err := Approve(audited)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	twice, err := Approve(once)
	if err != nil {
		t.Fatalf("second Approve() error = %v", err)
	}

	if once.Version != 3 {
		t.Errorf("Version after approve = %d, want 3", once.Version)
	}
	if twice.Version != once.Version {
		t.Errorf("re-approval bumped version to %d", twice.Version)
	}
	if once.Approved == nil {
		t.Fatal("Approved should be populated")
	}
	if once.Approved.Text != audited.Audited.Clean.Text {
		t.Error("approved snapshot must equal the audited clean content")
	}
	if twice.Status != StatusApproved || twice.Approved == nil {
		t.Error("re-approval must return the same logical state")
	}
}

func TestApprove_RequiresAudit(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")
	if _, err := Approve(q); err == nil {
		t.Error("approving an unaudited question must fail")
	}
}

func TestLockedQuestionIsImmutable(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")
	audited, _ := ApplyAuditResult(q, approvedResult(mcqContent()))
	locked, _ := Approve(audited)

	if _, err := ApplyAuditResult(locked, approvedResult(mcqContent())); err == nil {
		t.Error("auditing a locked question must fail")
	}
	if _, err := Reject(locked); err == nil {
		t.Error("rejecting a locked question must fail")
	}
	if locked.Version != 3 || locked.Status != StatusApproved {
		t.Error("failed operations must not change the locked question")
	}
}

func TestReject_PreservesAuditHistory(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")
	result := approvedResult(mcqContent())
	result.Status = StatusNeedsCorrection
	result.Logs = []AuditLog{{Type: LogConceptual, Severity: SeverityMedium, Message: "ambiguous stem"}}
	audited, _ := ApplyAuditResult(q, result)

	rejected, err := Reject(audited)
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Errorf("Status = %s, want %s", rejected.Status, StatusRejected)
	}
	if rejected.Version != 3 {
		t.Errorf("Version = %d, want 3", rejected.Version)
	}
	if rejected.Audited == nil || len(rejected.Audited.Logs) != 1 {
		t.Error("rejection must preserve the audited revision for resubmission")
	}
	if rejected.Approved != nil {
		t.Error("rejection must not populate the approved snapshot")
	}

	// a rejected question stays eligible for a fresh audit
	if _, err := ApplyAuditResult(rejected, approvedResult(mcqContent())); err != nil {
		t.Errorf("re-audit after rejection should succeed, got %v", err)
	}
}

func TestReject_RequiresAudit(t *testing.T) {
	q, _ := NewQuestion("01HTESTQUESTION0000000000A", mcqContent(), "Arithmetic")
	if _, err := Reject(q); err == nil {
		t.Error("rejecting an unaudited question must fail")
	}
}
