package extrema

import "errors"

var (
	ErrInvalidMode = errors.New("unknown extrema mode")
	ErrNoFiles     = errors.New("no files to scan")
)
