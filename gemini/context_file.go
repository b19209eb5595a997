package gemini

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// maxContextFileBytes caps the prefix file size; oversized files are
// ignored rather than partially read.
const maxContextFileBytes = 100000

// readContextFile returns the context file content, or "" when the file is
// missing, unreadable, oversized, or whitespace-only. Only the unreadable
// and oversized cases warrant a warning; absence is the normal case.
func readContextFile(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cannot access context file", "path", path, "error", err)
		}
		return ""
	}

	if info.Size() > maxContextFileBytes {
		slog.Warn("context file too large, ignoring",
			"path", path, "size", info.Size(), "max", maxContextFileBytes)
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read context file", "path", path, "error", err)
		return ""
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return ""
	}
	// Original formatting is preserved, not trimmed.
	return content
}

// preparePrompt prepends the context file content to the user prompt,
// blank-line separated, when a usable context file exists.
func (r *Runner) preparePrompt(prompt string) string {
	path := r.cfg.ContextFile
	if !filepath.IsAbs(path) && r.cfg.WorkDir != "" {
		path = filepath.Join(r.cfg.WorkDir, path)
	}

	prefix := readContextFile(path)
	if prefix == "" {
		return prompt
	}
	return prefix + "\n\n" + prompt
}
