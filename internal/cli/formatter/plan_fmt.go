package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erpacad/erpacad/internal/contract"
)

// FormatAnnualPlan renders the per-chapter allocation with the calendar
// breakdown when the budget was derived from working days.
func FormatAnnualPlan(resp *contract.AnnualPlanResponse) string {
	var b strings.Builder
	kind := string(resp.UnitKind)

	title := fmt.Sprintf("Class %s %s", resp.Grade, resp.Subject)
	if resp.Board != "" {
		title = resp.Board + " " + title
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "%s  %s\n", Dim("Band"), Bold(string(resp.Band)))
	fmt.Fprintf(&summary, "%s  %s", Dim("Teaching budget"), Bold(unitLabel(resp.Budget, kind)))
	if resp.BudgetDerived {
		fmt.Fprintf(&summary, " %s", Dim(fmt.Sprintf("from %d working days", resp.WorkingDays)))
	}
	if blocks := resp.Blocks; blocks != nil {
		fmt.Fprintf(&summary, "\n%s  %s", Dim("Calendar"), fmt.Sprintf(
			"%d total, %d revision, %d assessment, %d exams, %d buffer",
			blocks.Total, blocks.Revision, blocks.Assessment, blocks.Exams, blocks.Buffer))
	}
	fmt.Fprintf(&summary, "\n%s  %s", Dim("Pace"),
		fmt.Sprintf("%s per week (%s timetable)", unitLabel(resp.UnitsPerWeek, kind), resp.WeeklySubject))
	b.WriteString(RenderBox(title, summary.String()))
	b.WriteString("\n\n")

	headers := []string{"#", "CHAPTER", "WEIGHT", "UNITS", "WEEKS", "LOCK"}
	rows := make([][]string, 0, len(resp.Chapters))
	for i, ch := range resp.Chapters {
		rows = append(rows, []string{
			Dim(strconv.Itoa(i + 1)),
			ch.Chapter,
			strconv.Itoa(ch.Weight),
			Bold(strconv.Itoa(ch.RequiredUnits)),
			FormatWeeks(ch.ApproxWeeks),
			LockIndicator(ch.Locked),
		})
	}
	b.WriteString(RenderTable(headers, rows))
	fmt.Fprintf(&b, "\n%s %s\n", Dim("Total:"), Bold(unitLabel(resp.TotalUnits(), kind)))
	return b.String()
}

// FormatChapterPlan renders a chapter's unit list and progress.
func FormatChapterPlan(view *contract.ChapterPlanView) string {
	var b strings.Builder
	b.WriteString(Header(view.Chapter.Chapter))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		RenderProgress(view.Completed, view.Total, 20),
		Dim(string(view.State)),
		LockIndicator(view.Locked))

	headers := []string{"", "UNIT", "STATUS", "INTEGRATION", "DONE"}
	rows := make([][]string, 0, len(view.Units))
	for _, u := range view.Units {
		done := Dim("--")
		if u.CompletedAt != nil {
			done = u.CompletedAt.Format("Jan 2 15:04")
		}
		rows = append(rows, []string{
			UnitStatusIcon(u.Status),
			fmt.Sprintf("%s %d", titleCase(string(view.UnitKind)), u.UnitNo),
			string(u.Status),
			IntegrationBadge(u.IntegrationTag),
			done,
		})
	}
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return "Unit"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
