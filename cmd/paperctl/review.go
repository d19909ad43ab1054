package main

import (
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <question-id>",
		Short: "Run the AI audit on a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				resp, err := d.Workflow.RequestAudit(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				displayQuestion(resp)
				return nil
			})
		},
	}
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <question-id>",
		Short: "Approve an audited question, locking it for exam production",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				resp, err := d.Workflow.ApproveQuestion(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				displayQuestion(resp)
				return nil
			})
		},
	}
}

func newRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <question-id>",
		Short: "Reject an audited question, sending it back for correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				resp, err := d.Workflow.RejectQuestion(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				displayQuestion(resp)
				return nil
			})
		},
	}
}

func newApproveAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve-all",
		Short: "Approve every audited question in the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				resp, err := d.Workflow.ApproveAll(cmd.Context())
				if err != nil {
					return err
				}
				displayPaper(resp)
				return nil
			})
		},
	}
}
