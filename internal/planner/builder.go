package planner

import (
	"fmt"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/domain"
)

// Builder expands an annual-plan entry into a chapter execution plan.
// It never generates teaching content; payloads are filled lazily.
type Builder struct {
	policy *config.Policy
}

func NewBuilder(policy *config.Policy) *Builder {
	return &Builder{policy: policy}
}

// Build creates entry.RequiredUnits units with unit 1 unlocked, tags
// integration units from the placement table, and stamps every unit with
// the grade's phase template.
func (b *Builder) Build(entry domain.PlannedChapter, grade domain.Grade, subject string, kind domain.UnitKind, outcomes []string) (*domain.ChapterPlan, error) {
	key := domain.ChapterKey{Grade: grade, Subject: subject, Chapter: entry.ChapterID}
	plan, err := domain.NewChapterPlan(key, kind, entry.RequiredUnits)
	if err != nil {
		return nil, fmt.Errorf("building chapter plan: %w", err)
	}
	plan.Outcomes = append([]string(nil), outcomes...)

	template, _ := b.policy.TemplateFor(grade)
	for i := range plan.Units {
		plan.Units[i].PhaseTemplate = template
	}
	for unitNo, tag := range IntegrationSlots(b.policy.Placement, entry.RequiredUnits) {
		plan.Units[unitNo-1].IntegrationTag = tag
	}
	return plan, nil
}

// IntegrationSlots resolves the placement table for a chapter of k units
// into unit number -> tag. Entries needing more units than k are skipped,
// and a unit already tagged by an earlier entry keeps its tag.
func IntegrationSlots(placement []config.Placement, k int) map[int]domain.IntegrationTag {
	slots := make(map[int]domain.IntegrationTag)
	for _, p := range placement {
		if k < p.MinUnits {
			continue
		}
		unit := anchorUnit(p.Anchor, k)
		if unit < 1 || unit > k {
			continue
		}
		if _, taken := slots[unit]; taken {
			continue
		}
		slots[unit] = p.Tag
	}
	return slots
}

func anchorUnit(a config.Anchor, k int) int {
	switch a {
	case config.AnchorFirstThird:
		return (k + 2) / 3
	case config.AnchorMiddleThird:
		return (2*k + 2) / 3
	case config.AnchorFinal:
		return k
	}
	return 0
}
