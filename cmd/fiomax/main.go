// fiomax prints the largest value or the largest per-second IO count found across
// fio logs, for use as a fixed axis top when graphs are compared.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/fiolens/internal/config"
	"github.com/sanspareilsmyn/fiolens/internal/extrema"
	"github.com/sanspareilsmyn/fiolens/internal/logging"
)

var (
	iopsMax = flag.Bool("iopsmax", false, "Find the maximum IOs per interval instead of the maximum value")
	both    = flag.Bool("both", false, "Find both statistics in one pass")
	verbose = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FILE [FILE...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logCfg := config.LogConfig{Level: "warn", Format: "console"}
	if *verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	mode := extrema.ModeMax
	switch {
	case *both:
		mode = extrema.ModeBoth
	case *iopsMax:
		mode = extrema.ModeIOPS
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := extrema.NewScanner(logger.Named("extrema")).Scan(ctx, mode, files)
	if err != nil {
		logger.Error("Scan failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	if res.SkipErr != nil {
		logger.Warn("Some files were skipped", zap.Strings("files", res.Skipped), zap.Error(res.SkipErr))
	}

	switch mode {
	case extrema.ModeIOPS:
		fmt.Printf("Max value found across '%d' files was '%d'\n", len(files), res.MaxIOPS)
	case extrema.ModeBoth:
		fmt.Printf("Max value found across '%d' files was '%d' (p99 '%d')\n", len(files), res.MaxValue, res.P99Value)
		fmt.Printf("Max IOPS found across '%d' files was '%d'\n", len(files), res.MaxIOPS)
	default:
		fmt.Printf("Max value found across '%d' files was '%d' (p99 '%d')\n", len(files), res.MaxValue, res.P99Value)
	}
}
