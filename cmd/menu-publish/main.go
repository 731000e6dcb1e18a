package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aoperat/centumbob/internal/app"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/viewer"
)

func main() {
	var (
		xlsxOut    = flag.String("xlsx", "", "also export the stored menus to this XLSX file")
		restaurant = flag.String("restaurant", "", "limit the XLSX export to one restaurant")
		skip       = flag.Bool("skip-publish", false, "only export, do not write viewer data")
	)
	flag.Parse()

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if !*skip {
		res, err := a.Publisher.Publish(ctx)
		if errors.Is(err, viewer.ErrNothingToPublish) {
			logger.Warn("nothing to publish, save a menu first")
		} else if err != nil {
			logger.Error("publish failed", "error", err)
			os.Exit(1)
		} else {
			for _, w := range res.Warnings {
				logger.Warn("publish warning", "detail", w)
			}
			logger.Info("published", "restaurants", res.Restaurants, "images", res.Images, "files", res.Files)
		}
	}

	if *xlsxOut == "" {
		return
	}
	body, err := a.Exporter.ExportMenusXLSX(ctx, *restaurant)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*xlsxOut, body, 0o644); err != nil {
		logger.Error("failed to write output file", "path", *xlsxOut, "error", err)
		os.Exit(1)
	}
	logger.Info("exported", "path", *xlsxOut, "bytes", len(body))
}
