package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperaudit/internal/dto"
)

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit questions into the active session",
	}

	cmd.AddCommand(
		newSubmitManualCmd(),
		newSubmitTextCmd(),
		newSubmitFilesCmd(),
	)
	return cmd
}

func newSubmitManualCmd() *cobra.Command {
	var req dto.SubmitManualRequest
	var correctIndex int

	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Submit a single question from flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("correct-index") {
				req.CorrectIndex = &correctIndex
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				resp, err := d.Workflow.SubmitManual(cmd.Context(), &req)
				if err != nil {
					return err
				}
				displayQuestion(resp)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Topic, "topic", "t", "", "Topic of the question")
	cmd.Flags().StringVarP(&req.Question, "question", "q", "", "Question text (required)")
	cmd.Flags().StringArrayVarP(&req.Options, "option", "o", nil, "MCQ option (repeatable)")
	cmd.Flags().IntVar(&correctIndex, "correct-index", 0, "Zero-based index of the correct option")
	cmd.Flags().StringVarP(&req.CorrectAnswer, "answer", "a", "", "Correct answer for non-MCQ questions")
	cmd.Flags().StringVarP(&req.Solution, "solution", "s", "", "Detailed solution (required)")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "Paper subject")
	cmd.Flags().StringVar(&req.CreatedBy, "created-by", "", "Submitter name")

	return cmd
}

func newSubmitTextCmd() *cobra.Command {
	var (
		file      string
		subject   string
		createdBy string
	)

	cmd := &cobra.Command{
		Use:   "text [raw text]",
		Short: "Bulk-submit pasted text through the audit engine",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				text = string(data)
			case len(args) == 1:
				text = args[0]
			default:
				return fmt.Errorf("provide raw text as an argument or via --file")
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				report, err := d.Workflow.SubmitBulkText(cmd.Context(), &dto.BulkTextRequest{
					Text:      text,
					Subject:   subject,
					CreatedBy: createdBy,
				})
				if err != nil {
					return err
				}
				displayReport(report)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the raw text from a file")
	cmd.Flags().StringVar(&subject, "subject", "", "Paper subject")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Submitter name")

	return cmd
}

func newSubmitFilesCmd() *cobra.Command {
	var (
		subject   string
		createdBy string
	)

	cmd := &cobra.Command{
		Use:   "files <path>...",
		Short: "Bulk-submit documents (docx, text, pdf, images)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads := make([]dto.FileUpload, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				uploads = append(uploads, dto.FileUpload{
					Name:     filepath.Base(path),
					MimeType: mime.TypeByExtension(filepath.Ext(path)),
					Data:     data,
				})
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				report, err := d.Workflow.SubmitFiles(cmd.Context(), uploads, subject, createdBy)
				if err != nil {
					return err
				}
				displayReport(report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Paper subject")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Submitter name")

	return cmd
}
