package fiolog

import "errors"

var (
	ErrIO              = errors.New("cannot read log file")
	ErrMalformedRecord = errors.New("malformed log record")
	ErrEmptyFile       = errors.New("log file has no records")
)
