package rect

import (
	"bufio"
	"io"
)

// Writer writes records, one per line
type Writer struct {
	w     *bufio.Writer
	count int
}

// NewWriter creates a Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record
func (w *Writer) Write(rec Record) error {
	if _, err := w.w.WriteString(rec.String()); err != nil {
		return err
	}
	w.count++
	return w.w.WriteByte('\n')
}

// Count returns the number of records written
func (w *Writer) Count() int {
	return w.count
}

// Flush writes buffered data to the underlying writer
func (w *Writer) Flush() error {
	return w.w.Flush()
}
