package lesson

import "github.com/erpacad/erpacad/internal/domain"

// DepthProfile tunes the cognitive register of a script to the grade.
type DepthProfile struct {
	QuestionStyle   string `json:"question_style"`
	LanguageLevel   string `json:"language_level"`
	AbstractAllowed bool   `json:"abstract_allowed"`
}

// DepthFor returns the depth profile for a grade.
func DepthFor(g domain.Grade) DepthProfile {
	switch {
	case g.IsPrePrimary():
		return DepthProfile{QuestionStyle: "oral, concrete, gesture-based", LanguageLevel: "simple, repetitive"}
	case g <= 3:
		return DepthProfile{QuestionStyle: "guided oral + visual", LanguageLevel: "simple with examples"}
	case g <= 5:
		return DepthProfile{QuestionStyle: "why/how with examples", LanguageLevel: "structured sentences", AbstractAllowed: true}
	}
	return DepthProfile{QuestionStyle: "analytical, inferential", LanguageLevel: "academic but accessible", AbstractAllowed: true}
}
