package gemini

import "strings"

// Capture limits guarding against unbounded memory growth on misbehaving
// or very chatty CLI runs.
const (
	maxCapturedEvents = 10000
	maxNonJSONLines   = 1000
	maxStderrBytes    = 100000
)

// Result is the aggregated outcome of one invocation. It is built
// incrementally by the run loop (single writer, no locking) and sealed by
// enforceRequiredFields before being handed to the caller.
type Result struct {
	// SessionID is the last non-empty session identifier observed.
	SessionID string

	// AgentMessages is the assistant-authored content, newline-joined in
	// arrival order.
	AgentMessages string

	// Error is a human-readable failure description when Success is false.
	Error string

	// AllMessages holds every decoded event in arrival order, capped at
	// maxCapturedEvents. Populated only when CaptureAll was requested.
	AllMessages []any

	// CaptureAll records whether full event capture was requested.
	CaptureAll bool

	// Success is true until a stream, process, or validation failure
	// flips it. It never reverts to true.
	Success bool
}

func newResult(captureAll bool) *Result {
	return &Result{Success: true, CaptureAll: captureAll}
}

// appendError adds msg after any existing error text, newline-separated.
func (r *Result) appendError(msg string) {
	if r.Error == "" {
		r.Error = msg
		return
	}
	r.Error += "\n" + msg
}

// enforceRequiredFields is the final validation gate. A usable result must
// carry a session identifier, and either assistant text or (in capture
// mode) at least one captured event. Validation failures are appended after
// any error the run loop already recorded; extracted fields are never
// reverted.
func enforceRequiredFields(res *Result) {
	var errs []string

	if res.SessionID == "" {
		errs = append(errs, "failed to get SESSION_ID from the gemini session")
	}

	if res.AgentMessages == "" && !res.CaptureAll {
		errs = append(errs, "failed to get agent_messages from the gemini session; set return_all_messages to true to get the full information")
	} else if res.AgentMessages == "" && res.CaptureAll && len(res.AllMessages) == 0 {
		errs = append(errs, "failed to get any messages from the gemini session")
	}

	if len(errs) > 0 {
		res.Success = false
		res.appendError(strings.Join(errs, "\n"))
	}
}
