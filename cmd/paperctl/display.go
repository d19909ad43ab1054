package main

import (
	"fmt"
	"strings"

	"paperaudit/internal/dto"
)

func displayQuestion(q *dto.QuestionResponse) {
	fmt.Printf("ID: %s\n", q.ID)
	fmt.Printf("  Topic: %s\n", q.Topic)
	fmt.Printf("  Status: %s (v%d)%s\n", q.Status, q.Version, lockMarker(q.Locked))
	fmt.Printf("  Question: %s\n", q.Original.Text)
	if q.Audited != nil {
		for _, log := range q.Audited.Logs {
			fmt.Printf("  [%s/%s] %s\n", log.Type, log.Severity, log.Message)
		}
		fmt.Printf("  Clean: %s\n", q.Audited.Clean.Text)
	}
	if q.Approved != nil {
		fmt.Printf("  Approved: %s\n", q.Approved.Text)
	}
	fmt.Println()
}

func lockMarker(locked bool) string {
	if locked {
		return " [locked]"
	}
	return ""
}

func displayPaper(p *dto.PaperResponse) {
	title := p.Title
	if title == "" {
		title = "(no active session)"
	}
	fmt.Printf("Paper: %s\n", title)
	fmt.Printf("Status: %s\n", p.Status)
	if p.Subject != "" {
		fmt.Printf("Subject: %s\n", p.Subject)
	}
	fmt.Printf("Questions: %d\n\n", len(p.Questions))
	for _, q := range p.Questions {
		displayQuestion(&q)
	}
}

func displayReport(report *dto.BulkReport) {
	fmt.Printf("Ingested %d question(s)\n", report.Ingested)
	for _, q := range report.Questions {
		displayQuestion(&q)
	}
	if len(report.Failures) > 0 {
		fmt.Printf("%d item(s) failed:\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("  %s: %s\n", f.Item, f.Reason)
		}
	}
}

func displaySummaries(summaries []dto.PaperSummary) {
	if len(summaries) == 0 {
		fmt.Println("No archived papers.")
		return
	}
	for _, s := range summaries {
		archived := ""
		if s.ArchivedAt != nil {
			archived = s.ArchivedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s  %-30s %-12s %3d question(s)  %s\n",
			s.ID, truncate(s.Title, 30), s.Status, s.QuestionCount, archived)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
