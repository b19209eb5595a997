// Package gemini runs the Gemini CLI as a supervised subprocess and
// aggregates its stream-json output into a single result.
//
// The CLI is spawned in one-shot mode with the prompt as a single argv
// entry and its output format fixed to newline-delimited JSON. Stdout and
// stderr are drained concurrently by a single-writer run loop: each stdout
// line is decoded and folded into the result by a pure event reducer, each
// stderr line lands in a capped diagnostic buffer. A hard wall-clock
// deadline kills the whole process group and reaps the child before a
// timeout error is returned.
//
// Basic usage:
//
//	cfg, err := gemini.ResolveConfig("", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	runner := gemini.NewRunner(cfg)
//	res, err := runner.Run(ctx, gemini.Request{Prompt: "summarize this repo"})
//
// On success the result carries the session identifier (reusable via
// Request.Resume for multi-turn conversations) and the concatenated
// assistant text. With Request.CaptureAll every decoded event is retained,
// capped, for inspection.
package gemini
