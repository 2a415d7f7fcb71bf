package fiolog

import (
	"bufio"
	"fmt"
	"io"
)

const maxLineSize = 1024 * 1024

// Reader streams Records from a log, one line at a time.
// The first malformed line stops the stream; Err reports it with its line number.
type Reader struct {
	sc        *bufio.Scanner
	minFields int
	line      int
	rec       Record
	err       error
}

// NewReader creates a Reader that requires minFields fields on every line.
func NewReader(r io.Reader, minFields int) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{sc: sc, minFields: minFields}
}

// Next advances to the next record. It returns false at end of input or on error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			r.err = fmt.Errorf("%w: line %d: %w", ErrIO, r.line+1, err)
		}
		return false
	}
	r.line++
	rec, err := ParseLine(r.sc.Text(), r.minFields)
	if err != nil {
		r.err = fmt.Errorf("line %d: %w", r.line, err)
		return false
	}
	r.rec = rec
	return true
}

// Record returns the record read by the last successful Next.
func (r *Reader) Record() Record { return r.rec }

// Line returns the 1-based line number of the current record.
func (r *Reader) Line() int { return r.line }

func (r *Reader) Err() error { return r.err }
