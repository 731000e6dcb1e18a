package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/app"
	"github.com/aoperat/centumbob/internal/common"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "OCR timeout")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: runocr [-timeout 2m] <image>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)

	image, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read image", "path", path, "error", err)
		os.Exit(1)
	}

	recognizer, _ := app.NewExtractor(cfg, logger)
	if err := recognizer.Available(); err != nil {
		logger.Error("ocr unavailable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	text, err := recognizer.Recognize(ctx, image, constants.MimeForExt(filepath.Ext(path)))
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("text extraction ok", "path", path, "chars", len([]rune(text)), "elapsed_ms", time.Since(start).Milliseconds())
	fmt.Println(text)
}
