package reduce

import "github.com/sanspareilsmyn/fiolens/internal/fiolog"

// WindowAggregator reduces records into windows of average, min and max.
//
// A window closes when a record lands on a timestamp divisible by everyNth (with
// sameTime, only if the timestamp also differs from the previous record's). The
// closing record opens the next window. Finalize closes the window holding the
// last record.
type WindowAggregator struct {
	everyNth uint64
	sameTime bool

	started       bool
	sum           uint64
	count         uint64
	min, max      uint64
	lastTimestamp uint64
}

func NewWindowAggregator(everyNth uint64, sameTime bool) *WindowAggregator {
	if everyNth == 0 {
		everyNth = 1
	}
	return &WindowAggregator{everyNth: everyNth, sameTime: sameTime}
}

// Ingest adds a record and returns the bucket it closed, if any.
func (w *WindowAggregator) Ingest(rec fiolog.Record) (Bucket, bool) {
	if !w.started {
		w.seed(rec)
		w.started = true
		return Bucket{}, false
	}

	if w.isBoundary(rec.Timestamp) {
		b := w.bucket()
		w.seed(rec)
		return b, true
	}

	w.sum += rec.Value
	w.count++
	if rec.Value < w.min {
		w.min = rec.Value
	}
	if rec.Value > w.max {
		w.max = rec.Value
	}
	w.lastTimestamp = rec.Timestamp
	return Bucket{}, false
}

// Finalize closes the open window. It returns false if no record was ingested
// since the aggregator was created or last finalized.
func (w *WindowAggregator) Finalize() (Bucket, bool) {
	if !w.started {
		return Bucket{}, false
	}
	b := w.bucket()
	*w = WindowAggregator{everyNth: w.everyNth, sameTime: w.sameTime}
	return b, true
}

func (w *WindowAggregator) isBoundary(ts uint64) bool {
	if ts%w.everyNth != 0 {
		return false
	}
	return !w.sameTime || ts != w.lastTimestamp
}

func (w *WindowAggregator) seed(rec fiolog.Record) {
	w.sum = rec.Value
	w.count = 1
	w.min = rec.Value
	w.max = rec.Value
	w.lastTimestamp = rec.Timestamp
}

func (w *WindowAggregator) bucket() Bucket {
	avg := float64(w.sum) / float64(w.count)
	return Bucket{
		X:   float64(w.lastTimestamp) / fiolog.UnitScale,
		Avg: avg / fiolog.UnitScale,
		Min: float64(w.min) / fiolog.UnitScale,
		Max: float64(w.max) / fiolog.UnitScale,
	}
}
