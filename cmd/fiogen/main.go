// fiogen writes synthetic fio logs for demos and manual testing.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
)

var (
	output   = flag.String("o", "fiogen_lat.1.log", "Output log file")
	records  = flag.Int("n", 100000, "Number of records to write")
	logType  = flag.String("lt", "lat", "Log type to imitate: lat, bw, iops")
	mixed    = flag.Bool("mixed", false, "Mix reads, writes and trims instead of reads only")
	outliers = flag.Float64("outliers", 0.02, "Probability of an outlier record")
	seed     = flag.Int64("seed", 0, "Random seed, 0 uses the current time")
)

// profile is the value distribution of one log type.
type profile struct {
	mean, stddev float64
}

var profiles = map[string]profile{
	"lat":  {mean: 100000, stddev: 20000}, // nsec
	"bw":   {mean: 500000, stddev: 50000}, // KiB/sec
	"iops": {mean: 20000, stddev: 3000},   // IOs/sec
}

func main() {
	flag.Parse()

	prof, ok := profiles[*logType]
	if !ok {
		log.Fatalf("Unknown log type %q", *logType)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Error creating %s: %v", *output, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Fatalf("Error closing %s: %v", *output, err)
		}
	}()

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		log.Println("Shutdown signal received, stopping generator...")
		cancel()
	}()

	log.Printf("Writing %d %s records to %s (seed %d)", *records, *logType, *output, *seed)
	rng := rand.New(rand.NewSource(*seed))
	w := fiolog.NewWriter(f)

	var ts uint64
	written := 0
	for ; written < *records; written++ {
		if written%4096 == 0 && ctx.Err() != nil {
			log.Println("Context cancelled, exiting write loop.")
			break
		}
		// repeated timestamps are common in real logs
		ts += uint64(rng.Intn(2))
		if err := w.Write(generateRecord(rng, prof, ts)); err != nil {
			log.Fatalf("Error writing record: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Error flushing %s: %v", *output, err)
	}
	log.Printf("Wrote %d records spanning %d msec", written, ts)
}

// generateRecord draws one record with occasional outliers.
func generateRecord(rng *rand.Rand, prof profile, ts uint64) fiolog.Record {
	val := prof.mean + rng.NormFloat64()*prof.stddev
	if rng.Float64() < *outliers {
		val += rng.Float64() * 30 * prof.mean // Add large positive offset
	}
	if val < 1 {
		val = 1
	}

	dir := fiolog.Read
	if *mixed {
		switch p := rng.Float64(); {
		case p < 0.05:
			dir = fiolog.Trim
		case p < 0.40:
			dir = fiolog.Write
		}
	}

	const blockSize = 4096
	return fiolog.Record{
		Timestamp: ts,
		Value:     uint64(val),
		Direction: dir,
		BlockSize: blockSize,
		Offset:    uint64(rng.Int63n(1<<20)) * blockSize,
	}
}
