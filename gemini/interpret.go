package gemini

import "strings"

// Top-level event keys the interpreter understands. Everything else is
// passed through untouched in capture mode.
const (
	keySessionID = "session_id"
	keyType      = "type"
	keyRole      = "role"
	keyContent   = "content"
	keyError     = "error"
	keyMessage   = "message"

	typeMessage   = "message"
	roleAssistant = "assistant"
)

// promptDeprecationNotice is emitted by current gemini CLI builds as an
// assistant message even though it is tool noise, so it is filtered out.
const promptDeprecationNotice = "The --prompt (-p) flag has been deprecated"

// applyEvent folds one decoded stdout event into the result. It is a pure
// reducer over the event: no I/O, deterministic, and tolerant of any JSON
// shape (scalars and arrays only participate in capture).
func applyEvent(event any, res *Result, captureAll bool) {
	if captureAll && len(res.AllMessages) < maxCapturedEvents {
		res.AllMessages = append(res.AllMessages, event)
	}

	obj, ok := event.(map[string]any)
	if !ok {
		return
	}

	// Session identifier: last non-empty value wins across the run.
	if id := stringField(obj, keySessionID); id != "" {
		res.SessionID = id
	}

	itemType := stringField(obj, keyType)

	if itemType == typeMessage && stringField(obj, keyRole) == roleAssistant {
		if content := stringField(obj, keyContent); content != "" {
			if content == promptDeprecationNotice {
				return
			}
			if res.AgentMessages != "" {
				res.AgentMessages += "\n"
			}
			res.AgentMessages += content
		}
	}

	// Error detection. The substring heuristic on the discriminator is
	// deliberately broad; it matches what the CLI actually emits.
	lowerType := strings.ToLower(itemType)
	_, hasErrorKey := obj[keyError]
	if !hasErrorKey && !strings.Contains(lowerType, "fail") && !strings.Contains(lowerType, "error") {
		return
	}

	res.Success = false
	if errObj, ok := obj[keyError].(map[string]any); ok {
		if msg := stringField(errObj, keyMessage); msg != "" {
			res.Error = "gemini error: " + msg
		}
	} else if msg := stringField(obj, keyMessage); msg != "" {
		res.Error = "gemini error: " + msg
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
