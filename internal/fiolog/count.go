package fiolog

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Open opens a log file, wrapping failures in ErrIO.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return f, nil
}

// CountLines returns the number of lines in the file at path.
// A final line without a trailing newline is counted; an empty file yields 0.
func CountLines(path string) (int, error) {
	f, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := countLines(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return n, nil
}

func countLines(r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	count := 0
	var last byte = '\n'
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}
