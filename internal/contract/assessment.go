package contract

import "github.com/erpacad/erpacad/internal/domain"

// QuestionRequest asks for learning outcomes to assess, drawn at random
// from the dataset. Empty Chapters means every chapter of the subject.
type QuestionRequest struct {
	Board    string
	Grade    domain.Grade
	Subject  string
	Chapters []string
	Count    int

	// Seed fixes the draw. Zero picks a fresh seed, reported back in the set.
	Seed uint64
}

type Question struct {
	Chapter string
	Outcome string
}

// QuestionSet holds at most Count questions; fewer when the dataset has
// fewer outcomes for the selection.
type QuestionSet struct {
	Board     string
	Grade     domain.Grade
	Subject   string
	Seed      uint64
	Requested int
	Questions []Question
}
