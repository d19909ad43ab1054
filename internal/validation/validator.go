package validation

import (
	"strings"

	"paperaudit/internal/domain"
	"paperaudit/internal/dto"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateManualSubmission checks a single manually entered question before
// any state mutation. Question text and solution are mandatory; the request
// must carry either a full option set with a valid correct index, or a
// correct-answer string (which may be empty for subjective questions).
func (v *Validator) ValidateManualSubmission(req *dto.SubmitManualRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Question) == "" {
		errors = append(errors, domain.NewMissingFieldError("question"))
	}
	if strings.TrimSpace(req.Solution) == "" {
		errors = append(errors, domain.NewMissingFieldError("solution"))
	}

	if len(req.Options) > 0 {
		if req.CorrectAnswer != "" {
			errors = append(errors, domain.NewInvalidFormatError("correct_answer",
				"must be empty when options are provided"))
		}
		seen := make(map[string]struct{}, len(req.Options))
		for _, opt := range req.Options {
			trimmed := strings.TrimSpace(opt)
			if trimmed == "" {
				errors = append(errors, domain.NewInvalidFormatError("options", "contains an empty option"))
				break
			}
			if _, dup := seen[trimmed]; dup {
				errors = append(errors, domain.NewInvalidFormatError("options", "contains duplicate options"))
				break
			}
			seen[trimmed] = struct{}{}
		}
		if req.CorrectIndex == nil {
			errors = append(errors, domain.NewMissingFieldError("correct_index"))
		} else if *req.CorrectIndex < 0 || *req.CorrectIndex >= len(req.Options) {
			errors = append(errors, domain.NewInvalidFormatError("correct_index",
				"must index one of the provided options"))
		}
	} else if req.CorrectIndex != nil {
		errors = append(errors, domain.NewInvalidFormatError("correct_index",
			"requires options to be provided"))
	}

	return errors
}

// bulkMarkers are the keyword families a pasted batch must contain before
// the audit engine is called at all. Matching is case-insensitive and
// deliberately loose: any member of a family satisfies it.
var bulkMarkers = []struct {
	field    string
	keywords []string
}{
	{"question", []string{"question", "q.", "q:", "q)"}},
	{"answer", []string{"answer", "ans", "correct"}},
	{"solution", []string{"solution", "soln", "explanation"}},
}

// ValidateBulkText performs the cheap local sanity check on pasted raw text
// so obviously unusable input never reaches the audit engine.
func (v *Validator) ValidateBulkText(raw string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(raw) == "" {
		errors = append(errors, domain.NewMissingFieldError("text"))
		return errors
	}

	lowered := strings.ToLower(raw)
	for _, marker := range bulkMarkers {
		found := false
		for _, kw := range marker.keywords {
			if strings.Contains(lowered, kw) {
				found = true
				break
			}
		}
		if !found {
			errors = append(errors, domain.NewInvalidFormatError("text",
				"no recognizable "+marker.field+" marker found"))
		}
	}

	return errors
}
