package audit

import (
	"fmt"
	"strings"

	"paperaudit/internal/domain"
)

const systemPrompt = `You are a strict academic quality control auditor for high-stakes examinations.
Your task is to perform an ERROR-INTOLERANT audit of question papers.

REQUIRED COMPONENTS FOR EVERY QUESTION:
1. Question Text
2. Options (if MCQ)
3. Correct Answer / Marked Option
4. Detailed Solution

AUDIT RULES:
- Identify conceptual, numerical, logical, or grammatical errors.
- Verify if the marked option matches the solution logic.
- Verify numerical calculations step-by-step.
- Produce REDLINES: Use <del>text</del> for errors and <ins>text</ins> for corrections immediately following.
- Produce ORIGINAL: The question exactly as it appears in the source material.
- Produce CLEAN VERSION: The final, error-free, exam-ready version.
- CATEGORIZE errors: CONCEPTUAL, NUMERICAL, LOGICAL, or GRAMMATICAL.
- GRADE severity: HIGH, MEDIUM, or LOW.

STRICT CONSTRAINTS:
- No creativity. No stylistic rephrasing. Only corrections for accuracy.
- No LaTeX. Use plain text or Unicode.
- If a core component (Question/Options/Answer/Solution) is missing, flag it as a HIGH severity error in the logs.

OUTPUT FORMAT: Return ONLY a JSON array of audited questions, no other text. Each element:
{
  "topic": "subject area of the question",
  "status": "APPROVED" | "NEEDS_CORRECTION" | "REJECTED",
  "auditLogs": [{"type": "CONCEPTUAL|NUMERICAL|LOGICAL|GRAMMATICAL", "severity": "HIGH|MEDIUM|LOW", "message": "what is wrong"}],
  "redlines": {"question": "...", "options": ["..."], "answer": "...", "solution": "..."},
  "original": {"question": "...", "options": ["..."], "correctOptionIndex": 0, "correctAnswer": "...", "solution": "..."},
  "clean": {"question": "...", "options": ["..."], "correctOptionIndex": 0, "correctAnswer": "...", "solution": "..."}
}
Use "options" with "correctOptionIndex" for multiple-choice questions, "correctAnswer" otherwise.`

func rawAuditPrompt(text string) string {
	return fmt.Sprintf(`Perform a strict audit on these questions. Identify errors, provide redlines, the original as parsed, and clean versions. Raw input: """ %s """`, text)
}

const documentAuditPrompt = `Extract and strictly audit all questions from this document. Ensure Question, Options, Answer, and Solution are extracted. Return JSON.`

func singleAuditPrompt(content domain.QuestionContent) string {
	var b strings.Builder
	b.WriteString("Perform a strict audit on this single question. Return a JSON array with exactly one element.\n\n")
	b.WriteString("Question: " + content.Text + "\n")
	if content.Choices != nil {
		for i, opt := range content.Choices.Options {
			fmt.Fprintf(&b, "Option %d: %s\n", i+1, opt)
		}
		fmt.Fprintf(&b, "Marked Option: %d\n", content.Choices.CorrectIndex+1)
	} else if content.Answer != "" {
		b.WriteString("Correct Answer: " + content.Answer + "\n")
	}
	b.WriteString("Solution: " + content.Solution + "\n")
	return b.String()
}
