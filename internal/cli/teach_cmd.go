package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTeachCmd(app *App) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "teach",
		Short: "Walk a chapter unit by unit in an interactive view",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("teach needs an interactive terminal; use `erpacad unit show` and `erpacad unit complete` instead")
			}
			ctx := cmd.Context()
			req, err := flags.openRequest()
			if err != nil {
				return err
			}
			view, err := app.Execution.Open(ctx, app.Session, req)
			if err != nil {
				return err
			}

			p := tea.NewProgram(
				newTeachModel(ctx, app.Execution, app.Session, view.Chapter),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	flags.bind(cmd, "", keyFlagOpts{chapter: true})
	return cmd
}
