// Package ndjson provides newline-delimited JSON stream primitives for
// talking to CLI subprocesses over pipes.
package ndjson

import (
	"bufio"
	"io"
)

// Reader reads newline-delimited lines from a byte stream.
// Lines are returned without their terminator. A trailing fragment with
// no terminator is treated as end-of-stream and never emitted.
type Reader struct {
	br *bufio.Reader
}

// NewReader creates a Reader wrapping r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadLine returns the next complete line. It returns io.EOF once the
// stream is exhausted, and propagates any other read error as-is.
func (r *Reader) ReadLine() ([]byte, error) {
	line, err := r.br.ReadBytes('\n')
	if err != nil {
		if err == io.EOF {
			// Unterminated trailing data is dropped.
			return nil, io.EOF
		}
		return nil, err
	}

	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}
