package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/missdeer/gemini-mcp-go/gemini"
)

// ToolName is the name the gemini tool is registered under.
const ToolName = "gemini"

const toolDescription = "Invokes the Gemini CLI to execute AI-driven tasks, returning structured JSON events and a session identifier for conversation continuity."

// GeminiToolArgs is the tools/call argument schema for the gemini tool.
// Field casing follows the established tool contract (PROMPT, SESSION_ID).
type GeminiToolArgs struct {
	Prompt            string `json:"PROMPT" jsonschema:"required,description=Instruction for the task to send to gemini"`
	SessionID         string `json:"SESSION_ID,omitempty" jsonschema:"description=Resume the specified gemini session. If not provided or empty\\, starts a new session"`
	Model             string `json:"model,omitempty" jsonschema:"description=The model to use for the gemini session. Defaults to GEMINI_FORCE_MODEL or the Gemini CLI default"`
	TimeoutSecs       *int   `json:"timeout_secs,omitempty" jsonschema:"description=Timeout in seconds for gemini execution (1-3600). Defaults to GEMINI_DEFAULT_TIMEOUT or 600"`
	Sandbox           bool   `json:"sandbox,omitempty" jsonschema:"description=Run in sandbox mode. Defaults to false"`
	ReturnAllMessages bool   `json:"return_all_messages,omitempty" jsonschema:"description=Return all messages (reasoning\\, tool calls\\, etc.) instead of only the agent's final reply"`
}

// GeminiTool exposes a Runner as an MCP tool.
type GeminiTool struct {
	runner *gemini.Runner
}

// NewGeminiTool creates the tool around an existing runner.
func NewGeminiTool(runner *gemini.Runner) *GeminiTool {
	return &GeminiTool{runner: runner}
}

// Tools implements ToolHandler.
func (t *GeminiTool) Tools() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolName,
			Description: toolDescription,
			InputSchema: generateSchema[GeminiToolArgs](),
		},
	}
}

// HandleToolCall implements ToolHandler. Argument validation failures are
// surfaced as invalid-params errors before any process is spawned; a run
// that completes with Success=false becomes an internal error carrying the
// composed diagnostics.
func (t *GeminiTool) HandleToolCall(ctx context.Context, name string, args json.RawMessage) (*ToolCallResult, error) {
	if name != ToolName {
		return &ToolCallResult{
			Content: []ContentItem{{Type: "text", Text: "unknown tool: " + name}},
			IsError: true,
		}, nil
	}

	var a GeminiToolArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, invalidParams("invalid gemini tool arguments: " + err.Error())
	}

	req, rpcErr := a.toRequest()
	if rpcErr != nil {
		return nil, rpcErr
	}

	res, err := t.runner.Run(ctx, req)
	if err != nil {
		return nil, internalError("failed to execute gemini: " + err.Error())
	}

	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "unknown error"
		}
		if res.CaptureAll && len(res.AllMessages) > 0 {
			msg += fmt.Sprintf("\n\nCaptured %d events before failure:", len(res.AllMessages))
			if data, err := json.MarshalIndent(res.AllMessages, "", "  "); err == nil {
				msg += "\n" + string(data)
			}
		}
		return nil, internalError(msg)
	}

	return textResult(formatSuccess(res)), nil
}

// toRequest validates the arguments and maps them onto a core Request.
func (a GeminiToolArgs) toRequest() (gemini.Request, *RPCError) {
	if strings.TrimSpace(a.Prompt) == "" {
		return gemini.Request{}, invalidParams("PROMPT is required and must be a non-empty, non-whitespace string")
	}

	if a.Model != "" && strings.TrimSpace(a.Model) == "" {
		return gemini.Request{}, invalidParams("model must be a non-empty, non-whitespace string when provided")
	}

	timeoutSecs := 0
	if a.TimeoutSecs != nil {
		if *a.TimeoutSecs < gemini.MinTimeoutSecs || *a.TimeoutSecs > gemini.MaxTimeoutSecs {
			return gemini.Request{}, invalidParams(fmt.Sprintf(
				"timeout_secs must be between %d and %d seconds",
				gemini.MinTimeoutSecs, gemini.MaxTimeoutSecs))
		}
		timeoutSecs = *a.TimeoutSecs
	}

	return gemini.Request{
		Prompt:      a.Prompt,
		Sandbox:     a.Sandbox,
		Resume:      a.SessionID,
		Model:       strings.TrimSpace(a.Model),
		CaptureAll:  a.ReturnAllMessages,
		TimeoutSecs: timeoutSecs,
	}, nil
}

// formatSuccess renders the outward payload for a successful run.
func formatSuccess(res *gemini.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "success: true\nSESSION_ID: %s\nagent_messages: %s", res.SessionID, res.AgentMessages)

	if res.CaptureAll && len(res.AllMessages) > 0 {
		fmt.Fprintf(&b, "\nall_messages: %d events captured", len(res.AllMessages))
		if data, err := json.MarshalIndent(res.AllMessages, "", "  "); err == nil {
			b.WriteString("\n\nFull event log:\n")
			b.Write(data)
		}
	}

	return b.String()
}
