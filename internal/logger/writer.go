package logger

import (
	"bufio"
	"io"
	"sync"
)

// lineWriter fans complete log lines out to one or more sinks under a lock.
// Lines are flushed immediately; buffering only coalesces the line itself.
type lineWriter struct {
	mu    sync.Mutex
	sinks []*bufio.Writer
}

func newLineWriter(writers []io.Writer) *lineWriter {
	sinks := make([]*bufio.Writer, 0, len(writers))
	for _, w := range writers {
		if w == nil {
			continue
		}
		sinks = append(sinks, bufio.NewWriterSize(w, 8*1024))
	}
	return &lineWriter{sinks: sinks}
}

// WriteLine writes the payload followed by a newline to every sink.
func (w *lineWriter) WriteLine(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			return err
		}
		if err := sink.WriteByte('\n'); err != nil {
			return err
		}
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Flush forces buffered content out of every sink.
func (w *lineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}
