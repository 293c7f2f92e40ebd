package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/erpacad/erpacad/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ApprovalStatusPill returns a colored indicator such as "● Approved".
func ApprovalStatusPill(status domain.ApprovalStatus) string {
	switch status {
	case domain.ApprovalApproved:
		return StyleGreen.Render("✔ Approved")
	case domain.ApprovalPending:
		return StyleYellow.Render("○ Pending")
	default:
		return StyleDim.Render(string(status))
	}
}

// LockIndicator marks a chapter whose plan has been approved.
func LockIndicator(locked bool) string {
	if locked {
		return StyleRed.Render("▲ LOCKED")
	}
	return StyleGreen.Render("● OPEN")
}

// UnitStatusIcon returns a one-glyph marker for a unit's status.
func UnitStatusIcon(status domain.UnitStatus) string {
	switch status {
	case domain.UnitCompleted:
		return StyleDim.Render("✔")
	case domain.UnitUnlocked:
		return StyleGreen.Render("▶")
	default:
		return StyleDim.Render("·")
	}
}

// IntegrationBadge renders the integration activity a unit carries.
func IntegrationBadge(tag domain.IntegrationTag) string {
	if tag == domain.IntegrationNone {
		return StyleDim.Render("--")
	}
	s := string(tag)
	return StylePurple.Render(strings.ToUpper(s[:1]) + s[1:] + " integration")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
