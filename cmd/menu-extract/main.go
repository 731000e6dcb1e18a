package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/app"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
)

type output struct {
	Quality entity.Quality          `json:"quality"`
	Result  entity.ExtractionResult `json:"result"`
}

func main() {
	timeout := flag.Duration("timeout", 3*time.Minute, "overall extraction timeout")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: menu-extract [-timeout 3m] <image>")
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	_, extractor := app.NewExtractor(cfg, logger)
	res, quality, err := extractor.ExtractWithQuality(ctx, image, constants.MimeForExt(filepath.Ext(path)))
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(output{Quality: quality, Result: res}); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
