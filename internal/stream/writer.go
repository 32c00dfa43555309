package stream

import (
	"io"
	"sync"
)

// LineWriter serialises whole lines from several goroutines onto one writer
type LineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLineWriter wraps out
func NewLineWriter(out io.Writer) *LineWriter {
	return &LineWriter{out: out}
}

// WriteLine writes line followed by a newline in a single call
func (w *LineWriter) WriteLine(line string) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.out.Write(buf)
	return err
}
