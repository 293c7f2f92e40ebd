package formatter

import (
	"fmt"
	"strings"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
)

// FormatUnit renders the active unit with its teaching script.
func FormatUnit(u *contract.UnitView) string {
	var b strings.Builder
	title := fmt.Sprintf("%s · unit %d of %d", u.Chapter.Chapter, u.UnitNo, u.Total)

	var meta strings.Builder
	fmt.Fprintf(&meta, "%s  %s", Dim("Template"), u.PhaseTemplate)
	if u.IntegrationTag != domain.IntegrationNone {
		fmt.Fprintf(&meta, "\n%s  %s", Dim("Activity"), IntegrationBadge(u.IntegrationTag))
	}
	if !u.ScriptAvailable {
		fmt.Fprintf(&meta, "\n%s", StyleYellow.Render("Generated script unavailable; showing the outline."))
	}
	b.WriteString(RenderBox(title, meta.String()))
	b.WriteString("\n\n")
	b.WriteString(u.Script)
	if !strings.HasSuffix(u.Script, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCompletion renders the result of completing a unit.
func FormatCompletion(c *contract.CompletionView) string {
	done := StyleGreen.Render(fmt.Sprintf("✔ Unit %d completed", c.Completed.UnitNo))
	if c.State == domain.PlanFinished {
		return done + "  " + Bold("Chapter finished.") + "\n"
	}
	return done + "  " + Dim(fmt.Sprintf("unit %d is now unlocked", c.NextUnitNo)) + "\n"
}
