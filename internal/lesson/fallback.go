package lesson

import (
	"fmt"
	"strings"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/domain"
)

// phaseMoves are static teacher moves per phase name. Phases without an
// entry get a generic move built from the phase purpose.
var phaseMoves = map[string]struct{ teacher, students string }{
	"CONNECT":     {"Teacher starts from something the children already know about %s and asks them to share.", "Children recall and share familiar experiences."},
	"UNPACK":      {"Teacher breaks %s into small ideas and explains each one slowly, asking %s questions after each idea.", "Students respond orally, ask questions and clarify meaning."},
	"ILLUSTRATE":  {"Teacher tells a short story or shows a concrete example of %s.", "Children retell the example in their own words."},
	"PRACTISE":    {"Teacher guides a short practice task on %s and moves around to check each child.", "Children practise with the teacher's support."},
	"INTEGRATE":   {"Teacher runs a hands-on activity that uses %s in a new way.", "Children create, move or role-play using the idea."},
	"CHECKPOINT":  {"Teacher asks two quick questions about %s and notes who needs help.", "Children answer individually."},
	"CONSOLIDATE": {"Teacher sums up today's idea about %s in one sentence and links it to the next unit.", "Children say back the key idea."},
	"ATTUNE":      {"Teacher pauses, looks at the class and says: 'Before we begin %s, let us think quietly for a moment.'", "Students settle and focus attention."},
	"ANCHOR":      {"Teacher connects %s to a familiar situation and asks one open-ended question, then waits.", "Students share prior ideas, including partial or incorrect beliefs."},
	"CONFRONT":    {"Teacher presents a common incorrect idea about %s and asks: 'Does this always happen? Why or why not?'", "Students agree or disagree; some revise their thinking."},
	"STRUCTURE":   {"Teacher organises the ideas of %s into numbered points on the board.", "Students copy selectively and ask clarifying questions."},
	"TRANSFER":    {"Teacher poses a situation outside the textbook and asks students to apply %s to it.", "Students attempt reasoning, even if unsure."},
	"EVIDENCE":    {"Teacher asks two precise questions about %s and listens for reasoning, not memorised answers.", "Students explain the idea in their own words."},
}

// DeterministicScript builds a static script from the phase template and
// depth profile. Its Source is SourceFallback, so it carries the
// unavailable marker when rendered.
func DeterministicScript(req ScriptRequest, phases []config.Phase) Script {
	if req.Grade.IsPrePrimary() {
		return readinessScript(req)
	}

	depth := DepthFor(req.Grade)
	focus := focusOf(req)
	out := Script{Title: unitTitle(req), Source: SourceFallback}
	for _, p := range phases {
		ps := PhaseScript{Name: p.Name, Minutes: p.Minutes, Purpose: p.Purpose}
		if move, ok := phaseMoves[p.Name]; ok {
			if strings.Count(move.teacher, "%s") == 2 {
				ps.TeacherSays = fmt.Sprintf(move.teacher, focus, depth.QuestionStyle)
			} else {
				ps.TeacherSays = fmt.Sprintf(move.teacher, focus)
			}
			ps.StudentResponse = move.students
		} else {
			ps.TeacherSays = fmt.Sprintf("Teacher leads the class through %s: %s.", strings.ToLower(p.Name), p.Purpose)
		}
		out.Phases = append(out.Phases, ps)
	}
	if tag := req.IntegrationTag; tag != domain.IntegrationNone && len(out.Phases) > 0 {
		i := integrationPhase(out.Phases)
		out.Phases[i].TeacherSays += fmt.Sprintf(" This unit carries the %s integration activity.", tag)
	}
	return out
}

func readinessScript(req ScriptRequest) Script {
	focus := focusOf(req)
	var b strings.Builder
	b.WriteString("The teacher waits until every child is seated comfortably and does not rush the silence. ")
	fmt.Fprintf(&b, "The teacher speaks slowly and models %s with hands and voice, then pauses. ", focus)
	b.WriteString("One child at a time is invited in; the teacher waits without helping and nods gently at each attempt. ")
	b.WriteString("No child is rushed or corrected harshly. The experience ends quietly when readiness is observed.")
	if req.IntegrationTag != domain.IntegrationNone {
		fmt.Fprintf(&b, " Today the experience includes %s.", req.IntegrationTag)
	}
	return Script{
		Title: fmt.Sprintf("%s %s: readiness experience", req.Grade, req.Subject),
		Phases: []PhaseScript{{
			Name:            "READINESS",
			TeacherSays:     b.String(),
			StudentResponse: "The child responds independently and without prompting.",
		}},
		Source: SourceFallback,
	}
}

// focusOf cycles through the outcomes by unit number, else names the chapter.
func focusOf(req ScriptRequest) string {
	if len(req.Outcomes) > 0 {
		return strings.ToLower(req.Outcomes[(max(req.UnitNo, 1)-1)%len(req.Outcomes)])
	}
	return fmt.Sprintf("%q", req.Chapter)
}

func integrationPhase(phases []PhaseScript) int {
	for i, p := range phases {
		if p.Name == "INTEGRATE" || p.Name == "TRANSFER" {
			return i
		}
	}
	return len(phases) - 1
}
