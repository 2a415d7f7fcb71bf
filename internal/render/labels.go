package render

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sanspareilsmyn/fiolens/internal/reduce"
)

// YLabel names the measured quantity of a log type. Values are already scaled
// down by 1000, hence MiB and usec.
func YLabel(logType string) string {
	switch logType {
	case "bw":
		return "Bandwidth (MiB/sec)"
	case "lat":
		return "Latency (usec)"
	case "iops":
		return "Thousand IOs Per Second"
	default:
		return "Value"
	}
}

// ElapsedUnit describes the width of one io_count interval.
func ElapsedUnit(everyNth uint64) string {
	switch everyNth {
	case 1000:
		return "sec"
	case 1:
		return "msec"
	default:
		return strconv.FormatFloat(float64(everyNth)/1000, 'f', -1, 64) + " sec"
	}
}

// XLabel returns the x axis label for a mode.
func XLabel(mode reduce.Mode, everyNth uint64, logType string) string {
	switch mode {
	case reduce.ModeElapsed:
		return "Elapsed time (sec)"
	case reduce.ModeIOCount:
		return fmt.Sprintf("Elapsed time (%s)", ElapsedUnit(everyNth))
	case reduce.ModeHistogram:
		return YLabel(logType)
	default:
		return "IO Number (counted by log entries)"
	}
}

// modeYLabel is the y axis label; io_count always counts IOs.
func modeYLabel(mode reduce.Mode, logType string) string {
	switch mode {
	case reduce.ModeIOCount:
		return "IOPS"
	case reduce.ModeHistogram:
		return "Count"
	default:
		return YLabel(logType)
	}
}

// AggregatedLegend is the single legend entry of a combined graph.
func AggregatedLegend(paths []string) string {
	if len(paths) >= 3 {
		return "aggregated files"
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return strings.Join(names, ", ")
}

// prefixed inserts prefix in front of the base name of output.
func prefixed(output, prefix string) string {
	dir, base := filepath.Split(output)
	return filepath.Join(dir, prefix+"-"+base)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
