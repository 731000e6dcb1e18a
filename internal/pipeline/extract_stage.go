package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/ingest"
)

// Extractor turns a menu board image into a validated weekly menu.
type Extractor interface {
	ExtractWithQuality(ctx context.Context, image []byte, mimeType string) (entity.ExtractionResult, entity.Quality, error)
}

// ExtractOutcome is what the extract stage hands to the store stage.
type ExtractOutcome struct {
	Image   []byte
	Result  entity.ExtractionResult
	Quality entity.Quality
}

type ExtractStage struct {
	Extractor Extractor
	Logger    *slog.Logger
}

func NewExtractStage(x Extractor, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Extractor: x, Logger: logger}
}

// Run reads the inbox image and extracts its menu. Nothing is persisted.
func (s *ExtractStage) Run(ctx context.Context, job ingest.InboxJob) (ExtractOutcome, error) {
	fi, err := os.Stat(job.Path)
	if err != nil {
		return ExtractOutcome{}, fmt.Errorf("stat image: %w", err)
	}
	if fi.Size() > constants.MaxImageBytes {
		return ExtractOutcome{}, fmt.Errorf("%s: %w", job.Path, ingest.ErrImageTooLarge)
	}
	data, err := os.ReadFile(job.Path)
	if err != nil {
		return ExtractOutcome{}, fmt.Errorf("read image: %w", err)
	}

	res, quality, err := s.Extractor.ExtractWithQuality(ctx, data, constants.MimeForExt(job.Ext))
	if err != nil {
		return ExtractOutcome{}, fmt.Errorf("extract: %w", err)
	}
	return ExtractOutcome{Image: data, Result: res, Quality: quality}, nil
}
