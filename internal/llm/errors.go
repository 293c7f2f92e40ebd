package llm

import "errors"

// Sentinel errors returned by the Ollama client. Callers fall back to the
// deterministic lesson script on any of them.
var (
	ErrOllamaUnavailable = errors.New("ollama server unavailable")
	ErrTimeout           = errors.New("llm request timed out")

	// ErrInvalidOutput means the response held no usable script JSON.
	ErrInvalidOutput  = errors.New("invalid llm output format")
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)
