package cli

import (
	"time"

	"github.com/erpacad/erpacad/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and operator session CLI commands run against.
type App struct {
	Planning   service.PlanningService
	Execution  service.ExecutionService
	Approvals  service.ApprovalService
	Assessment service.AssessmentService

	// Session owns the chapter plans opened in this process.
	Session *service.Session

	// IsInteractive reports whether forms and the teaching view may take
	// over the terminal. Nil means never.
	IsInteractive func() bool

	// Now is the clock used for relative timestamps. Nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "erpacad" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "erpacad",
		Short:         "Curriculum pacing, lesson execution and plan approval",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Read by main before the command tree is built; declared here so cobra
	// accepts it.
	root.PersistentFlags().String("config", "", "Path to erpacad.yaml")

	root.AddCommand(
		newPlanCmd(app),
		newUnitCmd(app),
		newTeachCmd(app),
		newSubmitCmd(app),
		newApproveCmd(app),
		newApprovalsCmd(app),
		newLockCmd(app),
		newQuestionsCmd(app),
	)

	return root
}
