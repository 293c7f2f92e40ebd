package cli

import (
	"fmt"

	"github.com/erpacad/erpacad/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Allocate teaching units to chapters",
	}

	cmd.AddCommand(
		newPlanAnnualCmd(app),
		newPlanChapterCmd(app),
		newPlanRegenerateCmd(app),
	)

	return cmd
}

func newPlanAnnualCmd(app *App) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "annual",
		Short: "Show the annual allocation for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			resp, err := app.Planning.AnnualPlan(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAnnualPlan(resp))
			return nil
		},
	}

	flags.bind(cmd, app.Session.Board, keyFlagOpts{board: true})
	return cmd
}

func newPlanChapterCmd(app *App) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "chapter",
		Short: "Open a chapter's execution plan in this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.openRequest()
			if err != nil {
				return err
			}
			view, err := app.Execution.Open(cmd.Context(), app.Session, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChapterPlan(view))
			return nil
		},
	}

	flags.bind(cmd, "", keyFlagOpts{chapter: true})
	return cmd
}

func newPlanRegenerateCmd(app *App) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Rebuild a chapter plan from scratch unless it is approved",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.openRequest()
			if err != nil {
				return err
			}
			view, err := app.Execution.Regenerate(cmd.Context(), app.Session, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChapterPlan(view))
			return nil
		},
	}

	flags.bind(cmd, "", keyFlagOpts{chapter: true})
	return cmd
}
