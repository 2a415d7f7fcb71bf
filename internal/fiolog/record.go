// Package fiolog reads fio event logs (latency, bandwidth and IOPS logs written
// with write_*_log) into typed records.
package fiolog

import "fmt"

// Direction is the data direction of a logged I/O.
type Direction uint8

const (
	Read Direction = iota
	Write
	Trim
)

func (d Direction) String() string {
	switch d {
	case Read:
		return "read"
	case Write:
		return "write"
	case Trim:
		return "trim"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Record is one parsed log line.
//
// Timestamp is in msec since the start of the job. The unit of Value depends on
// the log type: nsec for latency logs, KiB/sec for bandwidth logs and plain
// IOPS for IOPS logs.
type Record struct {
	Timestamp uint64
	Value     uint64
	Direction Direction
	BlockSize uint64
	Offset    uint64
	Priority  uint8

	// HasDirection is false when the line stopped after the value field.
	HasDirection bool
}

// Scaled returns the value divided by 1000 (nsec to usec, KiB/s to MiB/s, IOPS to kIOPS).
func (r Record) Scaled() float64 {
	return float64(r.Value) / UnitScale
}

// UnitScale is the divisor applied to every value and timestamp placed in a reduced series.
const UnitScale = 1000
