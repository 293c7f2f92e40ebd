package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erpacad/erpacad/internal/contract"
)

// FormatQuestions lists sampled learning outcomes with the seed that
// reproduces the draw.
func FormatQuestions(set *contract.QuestionSet) string {
	title := fmt.Sprintf("Class %s %s", set.Grade, set.Subject)
	if set.Board != "" {
		title = set.Board + " " + title
	}
	if len(set.Questions) == 0 {
		return Dim("No learning outcomes match "+title+".") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", Bold(title), Dim(fmt.Sprintf("(%d of %d requested)", len(set.Questions), set.Requested)))
	rows := make([][]string, 0, len(set.Questions))
	for i, q := range set.Questions {
		rows = append(rows, []string{Dim("Q" + strconv.Itoa(i+1)), q.Chapter, q.Outcome})
	}
	b.WriteString(RenderTable([]string{"#", "CHAPTER", "LEARNING OUTCOME"}, rows))
	fmt.Fprintf(&b, "\n%s %d\n", Dim("Seed:"), set.Seed)
	return b.String()
}
