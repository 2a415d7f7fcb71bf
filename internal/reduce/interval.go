package reduce

import "github.com/sanspareilsmyn/fiolens/internal/fiolog"

// IntervalWidth is the width, in log time units, of an io_count interval.
const IntervalWidth = 1000

// IntervalCounter counts records per fixed 1000-unit timestamp interval.
//
// The threshold advances by one interval per crossing record, and the crossing
// record itself is not counted. Sparse logs that skip whole intervals therefore
// produce one bucket per crossing rather than one per elapsed interval.
type IntervalCounter struct {
	threshold uint64
	count     uint64
}

func NewIntervalCounter() *IntervalCounter {
	return &IntervalCounter{threshold: IntervalWidth}
}

// Ingest adds a record and returns the count of the interval it closed, if any.
func (c *IntervalCounter) Ingest(rec fiolog.Record) (uint64, bool) {
	if rec.Timestamp <= c.threshold {
		c.count++
		return 0, false
	}
	n := c.count
	c.count = 0
	c.threshold += IntervalWidth
	return n, true
}

// Finalize returns the count of the still-open interval when it is non-empty.
func (c *IntervalCounter) Finalize() (uint64, bool) {
	n := c.count
	c.count = 0
	return n, n > 0
}

// RepetitionCounter counts runs of records sharing a timestamp. A run ends when a
// record's timestamp differs from the run's first timestamp and is divisible by
// everyNth.
type RepetitionCounter struct {
	everyNth uint64
	started  bool
	last     uint64
	count    uint64
}

func NewRepetitionCounter(everyNth uint64) *RepetitionCounter {
	if everyNth == 0 {
		everyNth = 1
	}
	return &RepetitionCounter{everyNth: everyNth}
}

func (c *RepetitionCounter) Ingest(rec fiolog.Record) (uint64, bool) {
	if !c.started {
		c.started = true
		c.last = rec.Timestamp
		c.count = 1
		return 0, false
	}
	if rec.Timestamp != c.last && rec.Timestamp%c.everyNth == 0 {
		n := c.count
		c.last = rec.Timestamp
		c.count = 1
		return n, true
	}
	c.count++
	return 0, false
}

func (c *RepetitionCounter) Finalize() (uint64, bool) {
	if !c.started {
		return 0, false
	}
	n := c.count
	*c = RepetitionCounter{everyNth: c.everyNth}
	return n, true
}
