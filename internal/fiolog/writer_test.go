package fiolog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(Record{Timestamp: 3, Value: 120500, Direction: Write, BlockSize: 4096, Offset: 8192}))
	require.NoError(t, w.Write(Record{Timestamp: 4, Value: 99, Direction: Trim, BlockSize: 512, Priority: 1}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "3, 120500, 1, 4096, 8192, 0\n4, 99, 2, 512, 0, 1\n", buf.String())

	r := NewReader(&buf, MinFieldsWithDirection)
	require.True(t, r.Next())
	assert.Equal(t, Write, r.Record().Direction)
	require.True(t, r.Next())
	assert.Equal(t, uint8(1), r.Record().Priority)
	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
}
