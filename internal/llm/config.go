package llm

import "github.com/erpacad/erpacad/internal/config"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskLessonScript    TaskType = "lesson_script"
	TaskReadinessScript TaskType = "readiness_script"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  30000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskLessonScript:    {Temperature: 0.4, MaxTokens: 2048},
			TaskReadinessScript: {Temperature: 0.5, MaxTokens: 1024},
		},
	}
}

// FromConfig overlays the application's llm section onto DefaultConfig.
func FromConfig(c config.LLMConfig) LLMConfig {
	cfg := DefaultConfig()
	cfg.Enabled = c.Enabled
	cfg.LogCalls = c.LogCalls
	if c.Endpoint != "" {
		cfg.Endpoint = c.Endpoint
	}
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if c.TimeoutMs > 0 {
		cfg.TimeoutMs = c.TimeoutMs
	}
	if c.MaxRetries >= 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}
