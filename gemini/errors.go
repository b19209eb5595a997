package gemini

import (
	"errors"
	"fmt"
)

// ErrTimeout indicates the CLI did not finish within the execution deadline.
// The child process is killed and reaped before this error is returned.
var ErrTimeout = errors.New("gemini execution timed out")

// CLINotFoundError indicates the gemini CLI binary was not found.
type CLINotFoundError struct {
	Cause error
	Path  string
}

func (e *CLINotFoundError) Error() string {
	return fmt.Sprintf("gemini CLI not found at %q: %v", e.Path, e.Cause)
}

func (e *CLINotFoundError) Unwrap() error {
	return e.Cause
}

// ProcessError represents a process-level error: spawn failure, a broken
// pipe while draining output, or a failure to collect the exit status.
type ProcessError struct {
	Cause   error
	Message string
}

func (e *ProcessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("process error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("process error: %s", e.Message)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}
