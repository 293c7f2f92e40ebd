package lesson

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/llm"
	"github.com/erpacad/erpacad/internal/logging"
)

// UnavailableMarker prefixes every fallback script.
const UnavailableMarker = "[script unavailable]"

// Source says where a script came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// ScriptRequest describes the unit a script is wanted for.
type ScriptRequest struct {
	Grade          domain.Grade
	Subject        string
	Chapter        string
	UnitNo         int
	Total          int
	Outcomes       []string
	IntegrationTag domain.IntegrationTag
	Template       string
}

// PhaseScript is the scripted text of one phase.
type PhaseScript struct {
	Name            string `json:"name"`
	Minutes         int    `json:"minutes,omitempty"`
	Purpose         string `json:"purpose,omitempty"`
	TeacherSays     string `json:"teacher_says"`
	StudentResponse string `json:"student_response"`
}

// Script is the teaching content for one unit.
type Script struct {
	Title  string        `json:"title"`
	Phases []PhaseScript `json:"phases"`
	Source Source        `json:"source"`
}

// Available is false for fallback scripts.
func (s Script) Available() bool {
	return s.Source == SourceLLM
}

// Text renders the script as plain text.
func (s Script) Text() string {
	var b strings.Builder
	if !s.Available() {
		b.WriteString(UnavailableMarker)
		b.WriteString("\n\n")
	}
	b.WriteString(s.Title)
	b.WriteString("\n")
	for _, p := range s.Phases {
		b.WriteString("\n")
		if p.Minutes > 0 {
			fmt.Fprintf(&b, "%s (%d min)", p.Name, p.Minutes)
		} else {
			b.WriteString(p.Name)
		}
		if p.Purpose != "" {
			b.WriteString(" - " + p.Purpose)
		}
		b.WriteString("\n")
		if p.TeacherSays != "" {
			b.WriteString("Teacher: " + p.TeacherSays + "\n")
		}
		if p.StudentResponse != "" {
			b.WriteString("Students: " + p.StudentResponse + "\n")
		}
	}
	return b.String()
}

// ScriptService renders unit scripts. It never fails: when the text
// generator is unavailable or returns unusable output, a deterministic
// fallback script is returned instead.
type ScriptService interface {
	Script(ctx context.Context, req ScriptRequest) Script
}

type scriptService struct {
	client llm.LLMClient
	policy *config.Policy
	logger *slog.Logger
}

// NewScriptService creates a ScriptService. A nil client always falls back.
func NewScriptService(client llm.LLMClient, policy *config.Policy, logger *slog.Logger) ScriptService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &scriptService{client: client, policy: policy, logger: logger}
}

type llmScript struct {
	Title  string        `json:"title"`
	Phases []PhaseScript `json:"phases"`
}

func (s *scriptService) Script(ctx context.Context, req ScriptRequest) Script {
	phases := s.phases(req)
	if s.client == nil {
		return DeterministicScript(req, phases)
	}

	task, system := llm.TaskLessonScript, lessonSystemPrompt
	if req.Grade.IsPrePrimary() {
		task, system = llm.TaskReadinessScript, readinessSystemPrompt
	}

	prompt, err := buildUserPrompt(req, toPromptPhases(phases))
	if err != nil {
		return s.fallback(req, phases, err)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: system,
		UserPrompt:   prompt,
		JSON:         true,
	})
	if err != nil {
		return s.fallback(req, phases, err)
	}

	out, err := llm.ExtractJSON(resp.Text, matchesPhases(phases))
	if err != nil {
		return s.fallback(req, phases, err)
	}

	for i := range out.Phases {
		out.Phases[i].Name = phases[i].Name
		out.Phases[i].Minutes = phases[i].Minutes
		out.Phases[i].Purpose = phases[i].Purpose
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = unitTitle(req)
	}
	return Script{Title: out.Title, Phases: out.Phases, Source: SourceLLM}
}

func (s *scriptService) phases(req ScriptRequest) []config.Phase {
	if p, ok := s.policy.PhaseTemplates[req.Template]; ok {
		return p
	}
	_, p := s.policy.TemplateFor(req.Grade)
	return p
}

func (s *scriptService) fallback(req ScriptRequest, phases []config.Phase, err error) Script {
	s.logger.Warn("script_fallback",
		"grade", req.Grade.String(),
		"subject", req.Subject,
		"chapter", req.Chapter,
		"unit", req.UnitNo,
		"error", err,
	)
	return DeterministicScript(req, phases)
}

// matchesPhases requires one scripted phase per template phase, in order.
func matchesPhases(phases []config.Phase) llm.SchemaValidator[llmScript] {
	return func(out llmScript) error {
		if len(out.Phases) != len(phases) {
			return fmt.Errorf("got %d phases, want %d", len(out.Phases), len(phases))
		}
		for i, p := range out.Phases {
			if !strings.EqualFold(strings.TrimSpace(p.Name), phases[i].Name) {
				return fmt.Errorf("phase %d is %q, want %q", i+1, p.Name, phases[i].Name)
			}
			if strings.TrimSpace(p.TeacherSays) == "" {
				return fmt.Errorf("phase %s has no teacher script", phases[i].Name)
			}
		}
		return nil
	}
}

func toPromptPhases(phases []config.Phase) []promptPhase {
	out := make([]promptPhase, len(phases))
	for i, p := range phases {
		out[i] = promptPhase{Name: p.Name, Minutes: p.Minutes, Purpose: p.Purpose}
	}
	return out
}

func unitTitle(req ScriptRequest) string {
	return fmt.Sprintf("%s: %s (unit %d of %d)", req.Subject, req.Chapter, req.UnitNo, req.Total)
}
