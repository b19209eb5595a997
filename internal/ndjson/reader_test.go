package ndjson

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
}

func TestReadLine_Basic(t *testing.T) {
	r := NewReader(strings.NewReader("one\ntwo\nthree\n"))
	assert.Equal(t, []string{"one", "two", "three"}, readAll(t, r))
}

func TestReadLine_CRLF(t *testing.T) {
	r := NewReader(strings.NewReader("one\r\ntwo\r\n"))
	assert.Equal(t, []string{"one", "two"}, readAll(t, r))
}

func TestReadLine_EmptyLines(t *testing.T) {
	r := NewReader(strings.NewReader("\n\nx\n"))
	assert.Equal(t, []string{"", "", "x"}, readAll(t, r))
}

func TestReadLine_DropsUnterminatedTail(t *testing.T) {
	r := NewReader(strings.NewReader("complete\npartial"))
	assert.Equal(t, []string{"complete"}, readAll(t, r))
}

func TestReadLine_LongLine(t *testing.T) {
	// Longer than the default bufio buffer.
	long := strings.Repeat("x", 128*1024)
	r := NewReader(strings.NewReader(long + "\n"))
	lines := readAll(t, r)
	require.Len(t, lines, 1)
	assert.Equal(t, long, lines[0])
}

type failingReader struct {
	err error
}

func (f failingReader) Read([]byte) (int, error) {
	return 0, f.err
}

func TestReadLine_PropagatesReadError(t *testing.T) {
	readErr := errors.New("pipe broke")
	r := NewReader(failingReader{err: readErr})

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, readErr)
}

func TestWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write(map[string]string{"k": "v"}))
	require.NoError(t, w.WriteRaw([]byte(`{"raw":true}`)))

	r := NewReader(&buf)
	lines := readAll(t, r)
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"k":"v"}`, lines[0])
	assert.JSONEq(t, `{"raw":true}`, lines[1])
}
