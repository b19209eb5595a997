package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/missdeer/gemini-mcp-go/internal/ndjson"
	"github.com/missdeer/gemini-mcp-go/internal/procattr"
)

// Runner executes gemini CLI invocations. It is safe for concurrent use;
// each Run spawns its own child process and owns its aggregation state
// exclusively.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner. Zero-value config fields fall back to the
// built-in defaults; an out-of-range default timeout is replaced, not
// rejected.
func NewRunner(cfg Config) *Runner {
	if cfg.BinPath == "" {
		cfg.BinPath = defaultBin
	}
	if cfg.ContextFile == "" {
		cfg.ContextFile = contextFileName
	}
	if d, ok := timeoutFromSecs(int(cfg.DefaultTimeout / time.Second)); ok {
		cfg.DefaultTimeout = d
	} else {
		cfg.DefaultTimeout = DefaultTimeoutSecs * time.Second
	}
	return &Runner{cfg: cfg}
}

// buildArgs constructs the CLI argument vector. The prompt travels as a
// single argv entry; no shell is involved, so no quoting is performed.
func (r *Runner) buildArgs(req Request, prompt string) []string {
	args := []string{
		"--prompt", prompt,
		"-o", "stream-json",
	}

	if req.Sandbox {
		args = append(args, "--sandbox")
	}

	model := req.Model
	if model == "" {
		model = r.cfg.ForceModel
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	if req.Resume != "" {
		args = append(args, "--resume", req.Resume)
	}

	return args
}

// Run validates the request, spawns the gemini CLI, drains its output
// under the execution deadline, and returns the aggregated result.
//
// Request validation failures, spawn failures (CLINotFoundError,
// ProcessError), read failures, and deadline expiry (wrapping ErrTimeout)
// are returned as errors. Everything the process itself reports — non-zero
// exit, protocol-content problems, missing required fields — lands in the
// Result with Success=false and a composed error description.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeout := r.cfg.DefaultTimeout
	if req.TimeoutSecs != 0 {
		timeout = time.Duration(req.TimeoutSecs) * time.Second
	}

	prompt := r.preparePrompt(req.Prompt)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(r.cfg.BinPath, r.buildArgs(req, prompt)...)
	if r.cfg.WorkDir != "" {
		cmd.Dir = r.cfg.WorkDir
	}
	// Stdin stays nil: the CLI gets an empty stdin, all input is argv.
	procattr.Set(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ProcessError{Message: "failed to create stdout pipe", Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &ProcessError{Message: "failed to create stderr pipe", Cause: err}
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, &CLINotFoundError{Path: r.cfg.BinPath, Cause: err}
		}
		return nil, &ProcessError{Message: "failed to start gemini CLI", Cause: err}
	}

	return r.supervise(ctx, cmd, stdout, stderr, req.CaptureAll, timeout)
}

// lineEvent carries one line, or a terminal read error, from a stream
// reader goroutine to the run loop.
type lineEvent struct {
	err  error
	text string
}

// streamLines reads lines from src into ch until EOF, a read error, or
// cancellation. The channel close is the end-of-stream signal.
func streamLines(ctx context.Context, src io.Reader, ch chan<- lineEvent) {
	defer close(ch)
	reader := ndjson.NewReader(src)
	for {
		line, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				select {
				case ch <- lineEvent{err: err}:
				case <-ctx.Done():
				}
			}
			return
		}
		select {
		case ch <- lineEvent{text: string(line)}:
		case <-ctx.Done():
			return
		}
	}
}

// supervise is the single-writer run loop. Two reader goroutines feed line
// channels; this loop multiplexes them, applying stdout lines to the
// result and accumulating capped stderr, until both streams close. The
// strict one-line-at-a-time ordering means the aggregation needs no locks,
// and neither stream can deadlock the other while its pipe buffer fills.
func (r *Runner) supervise(ctx context.Context, cmd *exec.Cmd, stdout, stderr io.Reader, captureAll bool, timeout time.Duration) (*Result, error) {
	res := newResult(captureAll)

	stdoutCh := make(chan lineEvent)
	stderrCh := make(chan lineEvent)
	go streamLines(ctx, stdout, stdoutCh)
	go streamLines(ctx, stderr, stderrCh)

	var (
		stderrBuf       strings.Builder
		stderrTruncated bool
		nonJSON         []string
		validJSONSeen   bool
	)

	for stdoutCh != nil || stderrCh != nil {
		select {
		case <-ctx.Done():
			r.terminate(cmd)
			return nil, deadlineError(ctx, timeout)

		case ev, ok := <-stdoutCh:
			if !ok {
				stdoutCh = nil
				continue
			}
			if ev.err != nil {
				r.terminate(cmd)
				return nil, &ProcessError{Message: "failed to read gemini stdout", Cause: ev.err}
			}

			trimmed := strings.TrimSpace(ev.text)
			if trimmed == "" {
				continue
			}

			var event any
			if err := json.Unmarshal([]byte(trimmed), &event); err != nil {
				// Non-JSON output is kept (capped) for diagnostics; a bad
				// line never aborts the run.
				if len(nonJSON) < maxNonJSONLines {
					nonJSON = append(nonJSON, trimmed)
				}
				continue
			}
			validJSONSeen = true
			applyEvent(event, res, captureAll)

		case ev, ok := <-stderrCh:
			if !ok {
				stderrCh = nil
				continue
			}
			if ev.err != nil {
				slog.Warn("failed to read gemini stderr", "error", ev.err)
				stderrCh = nil
				continue
			}
			appendStderr(&stderrBuf, &stderrTruncated, ev.text)
		}
	}

	// Both streams closed; await the exit status, still under the deadline
	// in case the child closed its pipes but refuses to exit.
	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var waitErr error
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = procattr.KillGroup(cmd.Process)
		}
		<-waitCh
		return nil, deadlineError(ctx, timeout)
	case waitErr = <-waitCh:
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, &ProcessError{Message: "failed to wait for gemini CLI", Cause: waitErr}
		}

		res.Success = false
		msg := res.Error
		if msg == "" {
			msg = fmt.Sprintf("gemini command failed with exit code %d", exitErr.ExitCode())
		}
		if stderrBuf.Len() > 0 {
			msg += "\nStderr: " + stderrBuf.String()
		}
		// Non-JSON output often explains the failure.
		if len(nonJSON) > 0 {
			msg += "\nNon-JSON output: " + strings.Join(nonJSON, "\n")
		}
		res.Error = msg
	} else if !validJSONSeen {
		// A clean exit without a single parseable line is not a success.
		res.Success = false
		msg := "no valid structured output received from gemini CLI"
		if len(nonJSON) > 0 {
			msg += "\nOutput: " + strings.Join(nonJSON, "\n")
		}
		res.Error = msg
	}

	enforceRequiredFields(res)
	return res, nil
}

// terminate kills the whole process group and reaps the child, so that a
// forcibly cancelled run never leaks a zombie.
func (r *Runner) terminate(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = procattr.KillGroup(cmd.Process)
	}
	_ = cmd.Wait()
}

// deadlineError maps context termination to the caller-facing error.
func deadlineError(ctx context.Context, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("gemini command timed out after %s: %w", timeout, ErrTimeout)
	}
	return ctx.Err()
}

// appendStderr accumulates a stderr line under the byte cap. Once the cap
// is reached a single truncation marker is appended and further lines are
// dropped; the stream itself keeps being drained so the child never blocks.
func appendStderr(buf *strings.Builder, truncated *bool, line string) {
	if *truncated || buf.Len() >= maxStderrBytes {
		return
	}
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	remaining := maxStderrBytes - buf.Len()
	if len(line) <= remaining {
		buf.WriteString(line)
		return
	}
	buf.WriteString(line[:remaining])
	buf.WriteString("\n... (stderr truncated)")
	*truncated = true
}
