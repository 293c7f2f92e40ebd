package cli

import (
	"encoding/json"

	"github.com/erpacad/erpacad/internal/domain"
)

// planPayload is the JSON body stored with a submission.
type planPayload struct {
	Board    string        `json:"board,omitempty"`
	Grade    string        `json:"grade"`
	Subject  string        `json:"subject"`
	Chapter  string        `json:"chapter"`
	UnitKind string        `json:"unit_kind"`
	Outcomes []string      `json:"outcomes,omitempty"`
	Units    []payloadUnit `json:"units"`
}

type payloadUnit struct {
	UnitNo         int    `json:"unit_no"`
	PhaseTemplate  string `json:"phase_template"`
	IntegrationTag string `json:"integration_tag,omitempty"`
}

func encodePlan(board string, plan *domain.ChapterPlan) ([]byte, error) {
	p := planPayload{
		Board:    board,
		Grade:    plan.Key.Grade.String(),
		Subject:  plan.Key.Subject,
		Chapter:  plan.Key.Chapter,
		UnitKind: string(plan.UnitKind),
		Outcomes: plan.Outcomes,
		Units:    make([]payloadUnit, 0, len(plan.Units)),
	}
	for _, u := range plan.Units {
		p.Units = append(p.Units, payloadUnit{
			UnitNo:         u.UnitNo,
			PhaseTemplate:  u.PhaseTemplate,
			IntegrationTag: string(u.IntegrationTag),
		})
	}
	return json.Marshal(p)
}
