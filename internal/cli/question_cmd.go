package cli

import (
	"fmt"

	"github.com/erpacad/erpacad/internal/cli/formatter"
	"github.com/erpacad/erpacad/internal/contract"
	"github.com/spf13/cobra"
)

func newQuestionsCmd(app *App) *cobra.Command {
	var (
		flags    keyFlags
		chapters []string
		count    int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Draw learning outcomes at random for an assessment",
		Long: "Draws up to --count learning outcomes without replacement from the selected\n" +
			"chapters, or from every chapter of the subject when no --chapter is given.\n" +
			"Pass the printed seed back with --seed to repeat a draw.",
		RunE: func(cmd *cobra.Command, args []string) error {
			grade, err := flags.parseGrade()
			if err != nil {
				return err
			}
			set, err := app.Assessment.Questions(cmd.Context(), contract.QuestionRequest{
				Board:    flags.board,
				Grade:    grade,
				Subject:  flags.subject,
				Chapters: chapters,
				Count:    count,
				Seed:     seed,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatQuestions(set))
			return nil
		},
	}

	flags.bind(cmd, app.Session.Board, keyFlagOpts{board: true})
	cmd.Flags().StringSliceVar(&chapters, "chapter", nil, "Chapter to draw from; repeat or comma-separate for several")
	cmd.Flags().IntVar(&count, "count", 5, "Number of questions")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a repeatable draw; 0 picks one")
	return cmd
}
