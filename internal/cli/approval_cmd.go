package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/erpacad/erpacad/internal/cli/formatter"
	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/repository"
	"github.com/spf13/cobra"
)

func newSubmitCmd(app *App) *cobra.Command {
	var flags planFlags
	var payloadPath string
	var yes bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a chapter plan for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := flags.openRequest()
			if err != nil {
				return err
			}
			key, err := flags.approvalKey()
			if err != nil {
				return err
			}
			key = domain.KeyFor(key.Board, app.Planning.ResolveChapter(req))

			var payload []byte
			if payloadPath != "" {
				payload, err = os.ReadFile(payloadPath)
				if err != nil {
					return fmt.Errorf("reading payload: %w", err)
				}
			} else {
				plan, err := app.Planning.BuildChapter(ctx, req)
				if err != nil {
					return err
				}
				if payload, err = encodePlan(key.Board, plan); err != nil {
					return fmt.Errorf("encoding plan: %w", err)
				}
			}

			if !yes && app.interactive() {
				confirmed := true
				form := confirmForm("Submit "+key.String()+"?", "The plan is locked once a reviewer approves it.", &confirmed)
				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
				if !confirmed {
					return nil
				}
			}

			res, err := app.Approvals.Submit(ctx, contract.SubmitRequest{Key: key, Payload: payload})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSubmitResult(res))
			return nil
		},
	}

	flags.bind(cmd, app.Session.Board, keyFlagOpts{board: true, chapter: true})
	cmd.Flags().StringVar(&payloadPath, "payload", "", "JSON file to submit instead of the generated plan")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newApproveCmd(app *App) *cobra.Command {
	var remark string

	cmd := &cobra.Command{
		Use:   "approve <approval-id>",
		Short: "Approve a pending submission and lock its plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			if !cmd.Flags().Changed("remark") && app.interactive() {
				rec, err := app.Approvals.Get(ctx, id)
				if err != nil {
					return err
				}
				if err := remarkForm(rec.Key.String(), &remark).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
			}

			res, err := app.Approvals.Approve(ctx, contract.ApproveRequest{ID: id, Remark: remark})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatApproveResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&remark, "remark", "", "Reviewer remark stored with the approval")
	return cmd
}

func newApprovalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Inspect and import approval records",
	}

	cmd.AddCommand(
		newApprovalsListCmd(app),
		newApprovalsShowCmd(app),
		newApprovalsImportCmd(app),
	)

	return cmd
}

func newApprovalsListCmd(app *App) *cobra.Command {
	var status, board, grade, subject, chapter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approval records",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.ApprovalFilter{
				Board:   board,
				Subject: subject,
				Chapter: chapter,
			}
			switch domain.ApprovalStatus(status) {
			case "":
			case domain.ApprovalPending, domain.ApprovalApproved:
				filter.Status = domain.ApprovalStatus(status)
			default:
				return fmt.Errorf("invalid --status %q (expected PENDING or APPROVED)", status)
			}
			if grade != "" {
				g, err := domain.ParseGrade(grade)
				if err != nil {
					return err
				}
				filter.Grade = &g
			}

			views, err := app.Approvals.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatApprovalList(views, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: PENDING or APPROVED")
	cmd.Flags().StringVar(&board, "board", "", "Filter by board")
	cmd.Flags().StringVar(&grade, "grade", "", "Filter by class")
	cmd.Flags().StringVar(&subject, "subject", "", "Filter by subject")
	cmd.Flags().StringVar(&chapter, "chapter", "", "Filter by chapter")
	return cmd
}

func newApprovalsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <approval-id>",
		Short: "Show one approval record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := app.Approvals.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatApproval(view))
			return nil
		},
	}
}

func newApprovalsImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import legacy file-per-record approvals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Approvals.ImportLegacy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}
}

func newLockCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Inspect plan locks",
	}
	cmd.AddCommand(newLockStatusCmd(app))
	return cmd
}

func newLockStatusCmd(app *App) *cobra.Command {
	var flags keyFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether a chapter plan is locked by an approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := flags.approvalKey()
			if err != nil {
				return err
			}
			key = domain.KeyFor(key.Board, app.Planning.ResolveChapter(contract.OpenChapterRequest{
				Plan:    contract.AnnualPlanRequest{Board: key.Board, Grade: key.Grade, Subject: key.Subject},
				Chapter: key.Chapter,
			}))
			locked, err := app.Approvals.IsLocked(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLockStatus(key, locked))
			return nil
		},
	}

	flags.bind(cmd, app.Session.Board, keyFlagOpts{board: true, chapter: true})
	return cmd
}
