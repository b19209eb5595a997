package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnforceRequiredFields_RequiresSessionID(t *testing.T) {
	res := &Result{Success: true, AgentMessages: "msg"}

	enforceRequiredFields(res)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "SESSION_ID")
}

func TestEnforceRequiredFields_RequiresAgentMessagesWithoutCapture(t *testing.T) {
	res := &Result{Success: true, SessionID: "session"}

	enforceRequiredFields(res)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "agent_messages")
}

func TestEnforceRequiredFields_CaptureWithEventsAllowsEmptyText(t *testing.T) {
	res := &Result{
		Success:     true,
		SessionID:   "session",
		CaptureAll:  true,
		AllMessages: []any{map[string]any{"type": "tool_use"}},
	}

	enforceRequiredFields(res)

	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
}

func TestEnforceRequiredFields_CaptureWithoutAnyMessagesFails(t *testing.T) {
	res := &Result{Success: true, SessionID: "session", CaptureAll: true}

	enforceRequiredFields(res)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "any messages")
}

func TestEnforceRequiredFields_AppendsAfterExistingError(t *testing.T) {
	res := &Result{Success: false, Error: "gemini command failed with exit code 1"}

	enforceRequiredFields(res)

	require.Contains(t, res.Error, "exit code 1")
	require.Contains(t, res.Error, "SESSION_ID")
	// Supervisor error comes first.
	assert.Less(t,
		strings.Index(res.Error, "exit code 1"),
		strings.Index(res.Error, "SESSION_ID"))
}

func TestEnforceRequiredFields_ValidationErrorsNewlineJoined(t *testing.T) {
	res := &Result{Success: true}

	enforceRequiredFields(res)

	assert.Contains(t, res.Error, "SESSION_ID")
	assert.Contains(t, res.Error, "agent_messages")
	assert.Contains(t, res.Error, "\n")
}

func TestEnforceRequiredFields_DoesNotRevertExtractedFields(t *testing.T) {
	res := &Result{Success: true, SessionID: "keep-me"}

	enforceRequiredFields(res)

	assert.Equal(t, "keep-me", res.SessionID)
	assert.False(t, res.Success)
}
