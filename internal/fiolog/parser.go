package fiolog

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator is the literal field separator used by fio.
const Separator = ", "

const (
	// MinFields is the number of fields every line must carry (timestamp, value).
	MinFields = 2
	// MinFieldsWithDirection is required by reducers that split by data direction.
	MinFieldsWithDirection = 3
)

// ParseLine splits a raw log line into a Record.
// minFields is the number of leading fields that must be present and integer-parseable;
// values below MinFields are raised to MinFields. Fields after the direction are
// decoded when they parse and are otherwise ignored.
func ParseLine(line string, minFields int) (Record, error) {
	if minFields < MinFields {
		minFields = MinFields
	}
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, Separator)
	if len(fields) < minFields {
		return Record{}, fmt.Errorf("%w: expected at least %d fields, got %d", ErrMalformedRecord, minFields, len(fields))
	}

	var rec Record
	var err error
	if rec.Timestamp, err = parseField(fields[0], "timestamp"); err != nil {
		return Record{}, err
	}
	if rec.Value, err = parseField(fields[1], "value"); err != nil {
		return Record{}, err
	}

	if len(fields) > 2 {
		dir, err := parseField(fields[2], "direction")
		switch {
		case err != nil && minFields >= MinFieldsWithDirection:
			return Record{}, err
		case err == nil && dir > uint64(Trim):
			return Record{}, fmt.Errorf("%w: unknown direction %d", ErrMalformedRecord, dir)
		case err == nil:
			rec.Direction = Direction(dir)
			rec.HasDirection = true
		}
	}

	// trailing fields are informational only
	if len(fields) > 3 {
		rec.BlockSize, _ = strconv.ParseUint(strings.TrimSpace(fields[3]), 10, 64)
	}
	if len(fields) > 4 {
		rec.Offset, _ = strconv.ParseUint(strings.TrimSpace(fields[4]), 10, 64)
	}
	if len(fields) > 5 {
		prio, _ := strconv.ParseUint(strings.TrimSpace(fields[5]), 10, 8)
		rec.Priority = uint8(prio)
	}
	return rec, nil
}

func parseField(s, name string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s field %q: %w", ErrMalformedRecord, name, s, err)
	}
	return v, nil
}
