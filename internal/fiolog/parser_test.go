package fiolog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		minFields int
		want      Record
		wantErr   bool
	}{
		{
			name:      "full latency line",
			line:      "1023, 84512, 1, 4096, 1310720, 0\n",
			minFields: MinFields,
			want:      Record{Timestamp: 1023, Value: 84512, Direction: Write, BlockSize: 4096, Offset: 1310720, HasDirection: true},
		},
		{
			name:      "no offset or priority",
			line:      "5, 300, 0, 4096",
			minFields: MinFieldsWithDirection,
			want:      Record{Timestamp: 5, Value: 300, Direction: Read, BlockSize: 4096, HasDirection: true},
		},
		{
			name:      "timestamp and value only",
			line:      "0, 100",
			minFields: MinFields,
			want:      Record{Timestamp: 0, Value: 100},
		},
		{
			name:      "trim direction",
			line:      "7, 1, 2, 512\r\n",
			minFields: MinFieldsWithDirection,
			want:      Record{Timestamp: 7, Value: 1, Direction: Trim, BlockSize: 512, HasDirection: true},
		},
		{
			name:      "unparseable trailing fields ignored",
			line:      "7, 1, 0, abc, def",
			minFields: MinFields,
			want:      Record{Timestamp: 7, Value: 1, Direction: Read, HasDirection: true},
		},
		{name: "single field", line: "100", minFields: MinFields, wantErr: true},
		{name: "wrong separator", line: "100,200,0", minFields: MinFields, wantErr: true},
		{name: "non integer value", line: "100, 2.5, 0", minFields: MinFields, wantErr: true},
		{name: "negative timestamp", line: "-1, 2, 0", minFields: MinFields, wantErr: true},
		{name: "direction required", line: "1, 2", minFields: MinFieldsWithDirection, wantErr: true},
		{name: "direction out of range", line: "1, 2, 3", minFields: MinFields, wantErr: true},
		{name: "empty line", line: "", minFields: MinFields, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line, tt.minFields)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordScaled(t *testing.T) {
	assert.InDelta(t, 84.512, Record{Value: 84512}.Scaled(), 1e-9)
	assert.Equal(t, "trim", Trim.String())
	assert.Equal(t, "direction(9)", Direction(9).String())
}
