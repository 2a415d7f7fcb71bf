package fiolog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Writer emits records in fio's log format: timestamp, value, direction,
// block size, offset and priority separated by Separator.
type Writer struct {
	w   *bufio.Writer
	buf []byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), buf: make([]byte, 0, 64)}
}

// Write appends one line. Direction fields are always written.
func (w *Writer) Write(rec Record) error {
	b := w.buf[:0]
	b = strconv.AppendUint(b, rec.Timestamp, 10)
	b = append(b, Separator...)
	b = strconv.AppendUint(b, rec.Value, 10)
	b = append(b, Separator...)
	b = strconv.AppendUint(b, uint64(rec.Direction), 10)
	b = append(b, Separator...)
	b = strconv.AppendUint(b, rec.BlockSize, 10)
	b = append(b, Separator...)
	b = strconv.AppendUint(b, rec.Offset, 10)
	b = append(b, Separator...)
	b = strconv.AppendUint(b, uint64(rec.Priority), 10)
	b = append(b, '\n')
	w.buf = b
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Flush writes buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
