package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/ingest"
)

// ErrPoorExtraction marks an image from which neither prices nor menu items could be read.
// Such results are not stored so that they never overwrite a reviewed record.
var ErrPoorExtraction = errors.New("extraction produced no usable data")

// Processor coordinates extraction then storage for inbox images.
type Processor struct {
	logger       *slog.Logger
	extract      *ExtractStage
	store        *StoreStage
	removeSource bool
}

type Option func(*Processor)

// WithRemoveSource deletes the inbox file once its record has been stored.
func WithRemoveSource(remove bool) Option {
	return func(p *Processor) { p.removeSource = remove }
}

func NewProcessor(logger *slog.Logger, extract *ExtractStage, store *StoreStage, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{logger: logger, extract: extract, store: store}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process implements async.Processor.
func (p *Processor) Process(ctx context.Context, job ingest.InboxJob) error {
	_, _, err := p.ProcessJob(ctx, job)
	return err
}

// ProcessJob extracts the menu of one inbox image and stores it.
func (p *Processor) ProcessJob(ctx context.Context, job ingest.InboxJob) (*entity.MenuRecord, entity.Quality, error) {
	start := time.Now()

	out, err := p.extract.Run(ctx, job)
	if err != nil {
		p.logger.Error("processor.extract.failed", "path", job.Path, "restaurant", job.RestaurantName, "error", err)
		return nil, "", err
	}
	if out.Quality == entity.QualityPoor {
		p.logger.Warn("processor.skipped", "path", job.Path, "restaurant", job.RestaurantName, "quality", out.Quality)
		return nil, out.Quality, fmt.Errorf("%s: %w", job.Path, ErrPoorExtraction)
	}

	rec, err := p.store.Run(ctx, job, out)
	if err != nil {
		p.logger.Error("processor.store.failed", "path", job.Path, "restaurant", job.RestaurantName, "error", err)
		return nil, out.Quality, err
	}

	if p.removeSource {
		if err := os.Remove(job.Path); err != nil {
			p.logger.Warn("processor.remove_source.failed", "path", job.Path, "error", err)
		}
	}

	p.logger.Info("processor.ok",
		"restaurant", rec.RestaurantName,
		"date_range", rec.DateRange,
		"quality", out.Quality,
		"items", rec.Menus.TotalItems(),
		"image_path", rec.ImagePath,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, out.Quality, nil
}
