package reduce

import "errors"

var (
	ErrInvalidMode          = errors.New("unknown reduction mode")
	ErrInvalidEveryNth      = errors.New("every_nth must be positive")
	ErrInvalidCombine       = errors.New("unknown combine strategy")
	ErrAggregateUnsupported = errors.New("mode cannot aggregate files")
	ErrSeriesShape          = errors.New("series x and y lengths differ")
	ErrNoSamples            = errors.New("no samples to summarize")
)
