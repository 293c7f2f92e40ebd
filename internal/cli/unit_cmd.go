package cli

import (
	"fmt"

	"github.com/erpacad/erpacad/internal/cli/formatter"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/spf13/cobra"
)

func newUnitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Show or complete the unlocked unit of a chapter",
	}

	cmd.AddCommand(
		newUnitShowCmd(app),
		newUnitCompleteCmd(app),
	)

	return cmd
}

func newUnitShowCmd(app *App) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show chapter progress and the current unit's script",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := flags.openRequest()
			if err != nil {
				return err
			}
			view, err := app.Execution.Open(ctx, app.Session, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.FormatChapterPlan(view))
			if view.State == domain.PlanFinished {
				fmt.Fprintln(out, formatter.Bold("Chapter finished."))
				return nil
			}

			unit, err := app.Execution.Current(ctx, app.Session, view.Chapter)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatUnit(unit))
			return nil
		},
	}

	flags.bind(cmd, "", keyFlagOpts{chapter: true})
	return cmd
}

func newUnitCompleteCmd(app *App) *cobra.Command {
	var flags planFlags
	var count int

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark the unlocked unit completed and unlock the next one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			req, err := flags.openRequest()
			if err != nil {
				return err
			}
			view, err := app.Execution.Open(ctx, app.Session, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for range count {
				done, err := app.Execution.Complete(ctx, app.Session, view.Chapter)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatCompletion(done))
			}
			return nil
		},
	}

	flags.bind(cmd, "", keyFlagOpts{chapter: true})
	cmd.Flags().IntVar(&count, "count", 1, "Number of units to complete in order")
	return cmd
}
