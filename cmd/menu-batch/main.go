package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/aoperat/centumbob/internal/app"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/ingest"
	"github.com/aoperat/centumbob/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "inbox laid out as <restaurant>/<date range>/<image> (defaults to INBOX_DIR)")
		remove  = flag.Bool("remove", false, "delete each image once its menu is stored")
		publish = flag.Bool("publish", false, "publish viewer data after processing")
	)
	flag.Parse()

	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	if *dir == "" {
		*dir = cfg.Storage.InboxDir
	}
	if *dir == "" {
		printError("Error: --dir is required when INBOX_DIR is unset\n")
		os.Exit(2)
	}

	logger := common.NewLogger(cfg.Log, os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	jobs, stats, err := ingest.ScanInbox(ctx, *dir)
	if err != nil {
		logger.Error("failed to scan inbox", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("inbox scanned", "dir", *dir, "scanned", stats.Scanned, "matched", stats.Matched, "rejected", stats.Rejected)

	processor := a.InboxProcessor(*remove)
	var stored, skipped, failed int
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		_, _, err := processor.ProcessJob(ctx, job)
		switch {
		case err == nil:
			stored++
		case errors.Is(err, pipeline.ErrPoorExtraction):
			skipped++
		default:
			failed++
		}
	}

	if *publish && stored > 0 {
		if _, err := a.Publisher.Publish(ctx); err != nil {
			logger.Error("publish failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete", "stored", stored, "skipped", skipped, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
