package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPaperCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paper",
		Short: "Show the active working paper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				resp, err := d.Workflow.ActivePaper(cmd.Context())
				if err != nil {
					return err
				}
				displayPaper(resp)
				return nil
			})
		},
	}
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Archive the active session and start a fresh one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				snapshot, err := d.Workflow.ArchiveAndReset(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("Archived %q (%d question(s)) as %s\n",
					snapshot.Title, len(snapshot.Questions), snapshot.ID)
				return nil
			})
		},
	}
}

func newClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard the active session without archiving",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if err := d.Workflow.ClearSession(cmd.Context(), force); err != nil {
					return err
				}
				fmt.Println("Session cleared.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Discard unarchived questions without confirmation")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Work with archived papers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				summaries, err := d.Workflow.History(cmd.Context())
				if err != nil {
					return err
				}
				displaySummaries(summaries)
				return nil
			})
		},
	}

	cmd.AddCommand(newHistoryLoadCmd(), newHistoryDeleteCmd())
	return cmd
}

func newHistoryLoadCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "load <paper-id>",
		Short: "Load an archived paper as the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				resp, err := d.Workflow.LoadFromHistory(cmd.Context(), args[0], force)
				if err != nil {
					return err
				}
				displayPaper(resp)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Discard unarchived questions without confirmation")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <paper-id>",
		Short: "Delete an archived paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if err := d.Workflow.DeleteFromHistory(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted archive entry %s\n", args[0])
				return nil
			})
		},
	}
}
