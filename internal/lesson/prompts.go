package lesson

import (
	"encoding/json"
	"fmt"
	"strings"
)

const lessonSystemPrompt = `You write performance-ready classroom scripts for school teachers.
A script is what the teacher says and does, in order, not advice about teaching.

Rules:
- Follow the phases you are given, in the given order, with their names unchanged.
- Every phase must have "teacher_says" and "student_response".
- Match the question style and language level you are given.
- If abstract ideas are not allowed, stay with concrete objects and actions.
- If an integration activity is named, weave it into one phase and say which.
- Use only the learning outcomes provided. Do not invent new syllabus content.

Respond with ONLY a JSON object, no prose and no markdown:
{
  "title": "<short unit title>",
  "phases": [
    {"name": "<PHASE>", "teacher_says": "...", "student_response": "..."}
  ]
}`

const readinessSystemPrompt = `You write readiness experiences for pre-primary children (Nursery, LKG, UKG).
A readiness experience is ONE continuous script: no steps, no timings, no worksheets.
The teacher speaks slowly, waits, models, and never rushes or corrects harshly.
The experience ends when readiness is observed, not by the clock.

Respond with ONLY a JSON object, no prose and no markdown:
{
  "title": "<short title>",
  "phases": [
    {"name": "READINESS", "teacher_says": "<the full continuous script>", "student_response": "<what readiness looks like>"}
  ]
}`

type promptPhase struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
	Purpose string `json:"purpose,omitempty"`
}

type promptInput struct {
	Grade            string        `json:"grade"`
	Subject          string        `json:"subject"`
	Chapter          string        `json:"chapter"`
	Unit             string        `json:"unit"`
	LearningOutcomes []string      `json:"learning_outcomes"`
	Integration      string        `json:"integration_activity,omitempty"`
	Depth            DepthProfile  `json:"depth"`
	Phases           []promptPhase `json:"phases"`
}

func buildUserPrompt(req ScriptRequest, phases []promptPhase) (string, error) {
	in := promptInput{
		Grade:            req.Grade.String(),
		Subject:          req.Subject,
		Chapter:          req.Chapter,
		Unit:             fmt.Sprintf("%d of %d", req.UnitNo, req.Total),
		LearningOutcomes: req.Outcomes,
		Integration:      string(req.IntegrationTag),
		Depth:            DepthFor(req.Grade),
		Phases:           phases,
	}
	if in.LearningOutcomes == nil {
		in.LearningOutcomes = []string{}
	}
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("Write the script for this unit.\n\n")
	b.Write(data)
	return b.String(), nil
}
