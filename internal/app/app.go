// Package app wires configuration, storage and services into the objects the binaries run.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aoperat/centumbob/internal/cache"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/export"
	"github.com/aoperat/centumbob/internal/extract"
	"github.com/aoperat/centumbob/internal/ingest"
	"github.com/aoperat/centumbob/internal/llm/openai"
	"github.com/aoperat/centumbob/internal/menu"
	"github.com/aoperat/centumbob/internal/ocr"
	"github.com/aoperat/centumbob/internal/pipeline"
	"github.com/aoperat/centumbob/internal/ratelimit"
	repo "github.com/aoperat/centumbob/internal/repository"
	"github.com/aoperat/centumbob/internal/server"
	complaintsvc "github.com/aoperat/centumbob/internal/services/complaint"
	menusvc "github.com/aoperat/centumbob/internal/services/menu"
	restaurantsvc "github.com/aoperat/centumbob/internal/services/restaurant"
	"github.com/aoperat/centumbob/internal/viewer"
)

// App holds every long lived component built from a Config.
type App struct {
	Config *common.Config
	Logger *slog.Logger
	DB     *repo.DB

	Images      *ingest.ImageStore
	Fetcher     *ingest.RemoteFetcher
	OCR         *ocr.Recognizer
	Extractor   *extract.Extractor
	Menus       *menusvc.Service
	Restaurants *restaurantsvc.Service
	Complaints  *complaintsvc.Service
	Publisher   *viewer.Publisher
	Exporter    *export.Service
}

// New opens and migrates the store, then builds the services on top of it.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.PingTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.Migrate(ctx, db); err != nil {
		repo.Close(db, logger)
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	menuRepo := repo.NewMenuRepository(db, logger)
	restaurantRepo := repo.NewRestaurantRepository(db, logger)
	complaintRepo := repo.NewComplaintRepository(db, logger)

	images := ingest.NewImageStore(cfg.Storage.UploadDir, logger)
	bounds := thresholds(cfg)
	menus := menusvc.NewService(menuRepo, images, logger, menusvc.WithPriceBounds(bounds))

	recognizer, extractor := NewExtractor(cfg, logger)

	return &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Images:      images,
		Fetcher:     ingest.NewRemoteFetcher(nil, logger),
		OCR:         recognizer,
		Extractor:   extractor,
		Menus:       menus,
		Restaurants: restaurantsvc.NewService(restaurantRepo, logger, restaurantsvc.WithPriceBounds(bounds)),
		Complaints:  complaintsvc.NewService(complaintRepo, logger),
		Publisher: viewer.NewPublisher(menus, restaurantRepo, images, viewer.PublishConfig{
			DataDir:      cfg.Storage.DataDir,
			ViewerDir:    cfg.Storage.ViewerDir,
			InlineImages: cfg.Publish.InlineImages,
			Prices:       bounds,
		}, logger),
		Exporter: export.NewService(menus, logger),
	}, nil
}

// NewExtractor builds the OCR engine and the extraction orchestrator. It needs no storage.
func NewExtractor(cfg *common.Config, logger *slog.Logger) (*ocr.Recognizer, *extract.Extractor) {
	recognizer := ocr.NewRecognizer(ocr.Config{
		Tesseract:   cfg.OCR.TesseractBin,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         6,
		Timeout:     cfg.OCR.Timeout,
	}, logger)
	model := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,

		RequestsPerMinute: cfg.LLM.RPM,
	}, logger)

	opts := []extract.Option{extract.WithThresholds(thresholds(cfg))}
	if cfg.Cache.TTL > 0 {
		opts = append(opts, extract.WithCache(cache.New[string, entity.ExtractionResult](cfg.Cache.TTL, nil)))
	}
	return recognizer, extract.NewExtractor(recognizer, model, extract.Config{
		MaxAttempts: cfg.Extract.MaxAttempts,
		RetryDelay:  cfg.Extract.RetryDelay,
	}, logger, opts...)
}

// thresholds are the deployment's noise bounds, shared by extraction, saving and publishing
// so a price accepted by one stage is not dropped by the next.
func thresholds(cfg *common.Config) menu.Thresholds {
	return menu.Thresholds{
		MinPrice:   cfg.Extract.MinPrice,
		MaxPrice:   cfg.Extract.MaxPrice,
		MinItemLen: cfg.Extract.MinItemLen,
		MaxItemLen: cfg.Extract.MaxItemLen,
	}
}

// Ping checks that the store answers within the configured timeout.
func (a *App) Ping(ctx context.Context) error {
	return repo.HealthCheck(ctx, a.DB, a.Config.Database.PingTimeout, a.Logger)
}

func (a *App) Close() {
	repo.Close(a.DB, a.Logger)
}

// InboxProcessor extracts and stores images dropped into the inbox.
func (a *App) InboxProcessor(removeSource bool) *pipeline.Processor {
	return pipeline.NewProcessor(a.Logger,
		pipeline.NewExtractStage(a.Extractor, a.Logger),
		pipeline.NewStoreStage(a.Menus, a.Logger),
		pipeline.WithRemoveSource(removeSource),
	)
}

// HTTPHandler returns the REST API. The returned limiter must be stopped on shutdown.
func (a *App) HTTPHandler() (*server.Server, *ratelimit.KeyedRateLimiter) {
	limiter := ratelimit.PerMinute(a.Config.RateLimit.AnalyzePerMin)
	return server.New(server.Deps{
		Extractor:      a.Extractor,
		Menus:          a.Menus,
		Images:         a.Images,
		Publisher:      a.Publisher,
		Exporter:       a.Exporter,
		Restaurants:    a.Restaurants,
		Complaints:     a.Complaints,
		Fetcher:        a.Fetcher,
		Ping:           a.Ping,
		AnalyzeLimiter: limiter,
		CORSOrigins:    a.Config.Server.CORSOrigins,
	}, a.Logger), limiter
}
