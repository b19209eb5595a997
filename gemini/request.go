package gemini

import (
	"errors"
	"fmt"
	"strings"
)

// Timeout bounds for a single invocation, in seconds.
const (
	MinTimeoutSecs     = 1
	MaxTimeoutSecs     = 3600
	DefaultTimeoutSecs = 600
)

// Request describes a single gemini CLI invocation. A Request is immutable
// once constructed; Validate rejects malformed requests before any process
// is spawned.
type Request struct {
	// Prompt is the task instruction. Required, must be non-empty after
	// trimming whitespace.
	Prompt string

	// Resume names a previous session to continue. Empty starts a new one.
	Resume string

	// Model overrides the model for this invocation. Empty falls back to
	// Config.ForceModel, then to the CLI default.
	Model string

	// TimeoutSecs is the execution deadline. Zero uses the configured
	// default; any other value must lie in [MinTimeoutSecs, MaxTimeoutSecs].
	TimeoutSecs int

	// Sandbox runs the CLI in sandbox mode.
	Sandbox bool

	// CaptureAll retains every decoded event in Result.AllMessages.
	CaptureAll bool
}

// Validate checks the request invariants.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt must be a non-empty, non-whitespace string")
	}
	if r.TimeoutSecs != 0 && (r.TimeoutSecs < MinTimeoutSecs || r.TimeoutSecs > MaxTimeoutSecs) {
		return fmt.Errorf("timeout_secs must be between %d and %d seconds", MinTimeoutSecs, MaxTimeoutSecs)
	}
	return nil
}
