package reduce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
)

func TestSampleBuilder(t *testing.T) {
	var b SampleBuilder
	assert.Equal(t, Point{X: 0, Y: 1.5}, b.Ingest(rec(10, 1500)))
	assert.Equal(t, Point{X: 1, Y: 0.002}, b.Ingest(rec(10, 2)))
}

func TestMixedBuilder(t *testing.T) {
	var b MixedBuilder
	read := b.Ingest(fiolog.Record{Value: 1000, Direction: fiolog.Read})
	write := b.Ingest(fiolog.Record{Value: 2000, Direction: fiolog.Write})
	trim := b.Ingest(fiolog.Record{Value: 3000, Direction: fiolog.Trim})

	assert.Equal(t, 0.0, read.X)
	assert.Equal(t, 1.0, read.Read)
	assert.True(t, math.IsNaN(read.Write))
	assert.True(t, math.IsNaN(read.Trim))

	assert.Equal(t, 1.0, write.X)
	assert.Equal(t, 2.0, write.Write)
	assert.True(t, math.IsNaN(write.Read))

	assert.Equal(t, 2.0, trim.X)
	assert.Equal(t, 3.0, trim.Trim)
	assert.True(t, math.IsNaN(trim.Read))
	assert.True(t, math.IsNaN(trim.Write))
}
