package audit

import (
	"encoding/json"
	"fmt"
	"strings"

	"paperaudit/internal/domain"
)

// Wire shapes mirror the JSON schema the system prompt demands.

type contentPayload struct {
	Question           string   `json:"question"`
	Options            []string `json:"options,omitempty"`
	CorrectOptionIndex *int     `json:"correctOptionIndex,omitempty"`
	CorrectAnswer      string   `json:"correctAnswer,omitempty"`
	Solution           string   `json:"solution"`
}

type redlinesPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Solution string   `json:"solution"`
}

type auditLogPayload struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type resultPayload struct {
	Topic     string            `json:"topic"`
	Status    string            `json:"status"`
	AuditLogs []auditLogPayload `json:"auditLogs"`
	Redlines  redlinesPayload   `json:"redlines"`
	Original  contentPayload    `json:"original"`
	Clean     contentPayload    `json:"clean"`
}

// cleanResponse strips markdown fences and reasoning tags some models wrap
// around the JSON payload.
func cleanResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			cleaned = cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):]
			cleaned = strings.TrimSpace(cleaned)
		}
	}

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}

// parseResults decodes a model response into audit results. A single JSON
// object is tolerated and treated as a one-element array.
func parseResults(raw string) ([]domain.AuditResult, error) {
	cleaned := cleanResponse(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var payloads []resultPayload
	if strings.HasPrefix(cleaned, "{") {
		var single resultPayload
		if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
			return nil, fmt.Errorf("parsing audit response: %w (response: %s)", err, cleaned)
		}
		payloads = []resultPayload{single}
	} else {
		if err := json.Unmarshal([]byte(cleaned), &payloads); err != nil {
			return nil, fmt.Errorf("parsing audit response: %w (response: %s)", err, cleaned)
		}
	}

	results := make([]domain.AuditResult, 0, len(payloads))
	for i, p := range payloads {
		result, err := toDomain(p)
		if err != nil {
			return nil, fmt.Errorf("audit response element %d: %w", i, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// parseSingleResult decodes a response expected to describe exactly one
// question.
func parseSingleResult(raw string) (*domain.AuditResult, error) {
	results, err := parseResults(raw)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("expected one audited question, got %d", len(results))
	}
	return &results[0], nil
}

func toDomain(p resultPayload) (domain.AuditResult, error) {
	status := domain.QuestionStatus(strings.ToUpper(strings.TrimSpace(p.Status)))
	if !status.Valid() {
		return domain.AuditResult{}, fmt.Errorf("unknown audit status %q", p.Status)
	}

	original, err := contentToDomain(p.Original)
	if err != nil {
		return domain.AuditResult{}, fmt.Errorf("original content: %w", err)
	}
	clean, err := contentToDomain(p.Clean)
	if err != nil {
		return domain.AuditResult{}, fmt.Errorf("clean content: %w", err)
	}

	logs := make([]domain.AuditLog, 0, len(p.AuditLogs))
	for _, l := range p.AuditLogs {
		logs = append(logs, domain.AuditLog{
			Type:     domain.AuditLogType(strings.ToUpper(l.Type)),
			Severity: domain.Severity(strings.ToUpper(l.Severity)),
			Message:  l.Message,
		})
	}

	return domain.AuditResult{
		Status: status,
		Topic:  p.Topic,
		Logs:   logs,
		Redlines: domain.Redlines{
			Question: p.Redlines.Question,
			Options:  p.Redlines.Options,
			Answer:   p.Redlines.Answer,
			Solution: p.Redlines.Solution,
		},
		Original: original,
		Clean:    clean,
	}, nil
}

func contentToDomain(p contentPayload) (domain.QuestionContent, error) {
	content := domain.QuestionContent{
		Text:     p.Question,
		Answer:   p.CorrectAnswer,
		Solution: p.Solution,
	}
	if len(p.Options) > 0 {
		if p.CorrectOptionIndex == nil {
			return domain.QuestionContent{}, fmt.Errorf("options present without correctOptionIndex")
		}
		content.Answer = ""
		content.Choices = &domain.ChoiceSet{
			Options:      p.Options,
			CorrectIndex: *p.CorrectOptionIndex,
		}
	}
	return content, nil
}
