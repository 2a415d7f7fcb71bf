package reduce

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
)

func rec(ts, value uint64) fiolog.Record {
	return fiolog.Record{Timestamp: ts, Value: value}
}

func runWindow(w *WindowAggregator, recs ...fiolog.Record) []Bucket {
	var out []Bucket
	for _, r := range recs {
		if b, ok := w.Ingest(r); ok {
			out = append(out, b)
		}
	}
	if b, ok := w.Finalize(); ok {
		out = append(out, b)
	}
	return out
}

func assertBuckets(t *testing.T, want, got []Bucket) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, 1e-9, "bucket %d x", i)
		assert.InDelta(t, want[i].Avg, got[i].Avg, 1e-9, "bucket %d avg", i)
		assert.InDelta(t, want[i].Min, got[i].Min, 1e-9, "bucket %d min", i)
		assert.InDelta(t, want[i].Max, got[i].Max, 1e-9, "bucket %d max", i)
	}
}

func TestWindowAggregatorPeriodicFlush(t *testing.T) {
	got := runWindow(NewWindowAggregator(1000, false),
		rec(0, 100), rec(1000, 200), rec(2000, 300))

	assertBuckets(t, []Bucket{
		{X: 0, Avg: 0.1, Min: 0.1, Max: 0.1},
		{X: 1, Avg: 0.2, Min: 0.2, Max: 0.2},
		{X: 2, Avg: 0.3, Min: 0.3, Max: 0.3},
	}, got)
}

func TestWindowAggregatorSingleRecord(t *testing.T) {
	got := runWindow(NewWindowAggregator(1000, false), rec(42, 5000))
	assertBuckets(t, []Bucket{{X: 0.042, Avg: 5, Min: 5, Max: 5}}, got)
}

func TestWindowAggregatorEveryRecord(t *testing.T) {
	got := runWindow(NewWindowAggregator(1, false), rec(0, 10), rec(1, 20), rec(1, 30))
	assertBuckets(t, []Bucket{
		{X: 0, Avg: 0.01, Min: 0.01, Max: 0.01},
		{X: 0.001, Avg: 0.02, Min: 0.02, Max: 0.02},
		{X: 0.001, Avg: 0.03, Min: 0.03, Max: 0.03},
	}, got)
}

func TestWindowAggregatorEnvelope(t *testing.T) {
	got := runWindow(NewWindowAggregator(1000, false), rec(1, 5000), rec(2, 1000), rec(3, 9000))
	assertBuckets(t, []Bucket{{X: 0.003, Avg: 5, Min: 1, Max: 9}}, got)
}

func TestWindowAggregatorSameTime(t *testing.T) {
	recs := []fiolog.Record{rec(0, 1000), rec(0, 3000), rec(1, 5000), rec(1, 7000)}

	// every record lands on a multiple of 1, but a burst at one timestamp stays together
	got := runWindow(NewWindowAggregator(1, true), recs...)
	assertBuckets(t, []Bucket{
		{X: 0, Avg: 2, Min: 1, Max: 3},
		{X: 0.001, Avg: 6, Min: 5, Max: 7},
	}, got)

	// without same_time every record closes the window
	got = runWindow(NewWindowAggregator(1, false), recs...)
	assert.Len(t, got, 4)
}

func TestWindowAggregatorFinalizeResets(t *testing.T) {
	w := NewWindowAggregator(1000, false)
	_, ok := w.Finalize()
	assert.False(t, ok, "nothing ingested")

	runWindow(w, rec(0, 1), rec(1, 2))
	_, ok = w.Finalize()
	assert.False(t, ok, "already finalized")

	got := runWindow(w, rec(5, 4000))
	assertBuckets(t, []Bucket{{X: 0.005, Avg: 4, Min: 4, Max: 4}}, got)
}

func TestWindowAggregatorAlwaysEmits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(50)
		recs := make([]fiolog.Record, n)
		var ts uint64
		for j := range recs {
			ts += uint64(rng.Intn(3))
			recs[j] = rec(ts, uint64(rng.Intn(100000)))
		}
		everyNth := uint64(1 + rng.Intn(5))
		got := runWindow(NewWindowAggregator(everyNth, rng.Intn(2) == 0), recs...)
		assert.GreaterOrEqual(t, len(got), 1)
		assert.LessOrEqual(t, len(got), n)
	}
}
