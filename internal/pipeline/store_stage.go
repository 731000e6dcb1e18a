package pipeline

import (
	"context"
	"log/slog"

	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/ingest"
	menusvc "github.com/aoperat/centumbob/internal/services/menu"
)

// MenuSaver persists an extraction together with its source image.
type MenuSaver interface {
	SaveExtraction(ctx context.Context, restaurant, dateRange string, res entity.ExtractionResult, img *menusvc.Upload) (*entity.MenuRecord, error)
}

type StoreStage struct {
	Menus  MenuSaver
	Logger *slog.Logger
}

func NewStoreStage(menus MenuSaver, logger *slog.Logger) *StoreStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreStage{Menus: menus, Logger: logger}
}

// Run stores the image and upserts the record keyed by the job's restaurant and date range.
func (s *StoreStage) Run(ctx context.Context, job ingest.InboxJob, out ExtractOutcome) (*entity.MenuRecord, error) {
	return s.Menus.SaveExtraction(ctx, job.RestaurantName, job.DateRange, out.Result, &menusvc.Upload{
		Bytes: out.Image,
		Ext:   job.Ext,
	})
}
