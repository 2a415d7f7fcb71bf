package render

import "errors"

var (
	ErrInvalidGraphType = errors.New("invalid graph type")
	ErrUnsupportedGraph = errors.New("graph type not supported for this mode")
	ErrNothingToPlot    = errors.New("no data points to plot")
	ErrSaveFailed       = errors.New("failed to save graph")
)
