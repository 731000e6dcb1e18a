package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
	menurules "github.com/aoperat/centumbob/internal/menu"
	"github.com/aoperat/centumbob/internal/repository"
)

// ImageSaver persists uploaded menu images and returns their stored path.
type ImageSaver interface {
	Save(restaurant, dateRange, ext string, data []byte) (string, error)
}

// Upload is an optional image attached to a save request.
type Upload struct {
	Bytes []byte
	Ext   string
}

// Service handles saving, loading and deleting weekly menu records.
type Service struct {
	menus     repository.MenuRepository
	images    ImageSaver
	prices    menurules.Thresholds
	validator *common.Validator
	logger    *slog.Logger
}

type Option func(*Service)

// WithPriceBounds sets the range a price must fall in to survive a save.
func WithPriceBounds(t menurules.Thresholds) Option {
	return func(s *Service) { s.prices = t }
}

// NewService creates a new menu service.
func NewService(menus repository.MenuRepository, images ImageSaver, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		menus:     menus,
		images:    images,
		prices:    menurules.DefaultThresholds,
		validator: common.NewValidator(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a reviewed extraction. Prices are normalized and missing days filled in.
// Without an upload the previously stored image of the same record is kept.
func (s *Service) Save(ctx context.Context, req entity.MenuSaveRequest, img *Upload) (*entity.MenuRecord, error) {
	req.RestaurantName = strings.TrimSpace(req.RestaurantName)
	req.DateRange = strings.TrimSpace(req.DateRange)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	rec := entity.MenuRecord{
		RestaurantName: req.RestaurantName,
		DateRange:      req.DateRange,
		PriceLunch:     s.prices.NormalizePrice(req.Price.Lunch),
		PriceDinner:    s.prices.NormalizePrice(req.Price.Dinner),
		Menus:          req.Menus.Normalized(),
	}

	if img != nil && len(img.Bytes) > 0 {
		path, err := s.images.Save(rec.RestaurantName, rec.DateRange, img.Ext, img.Bytes)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		rec.ImagePath = path
	} else {
		prev, err := s.menus.Get(ctx, rec.RestaurantName, rec.DateRange)
		switch {
		case err == nil:
			rec.ImagePath = prev.ImagePath
		case !errors.Is(err, common.ErrNotFound):
			return nil, err
		}
	}

	saved, err := s.menus.Upsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu.saved",
		"restaurant", saved.RestaurantName,
		"date_range", saved.DateRange,
		"items", saved.Menus.TotalItems(),
		"has_image", saved.ImagePath != "",
	)
	return saved, nil
}

// SaveExtraction stores the output of the extractor as-is.
func (s *Service) SaveExtraction(ctx context.Context, restaurant, dateRange string, res entity.ExtractionResult, img *Upload) (*entity.MenuRecord, error) {
	return s.Save(ctx, entity.MenuSaveRequest{
		RestaurantName: restaurant,
		DateRange:      dateRange,
		Price:          res.Price,
		Menus:          res.Menus,
	}, img)
}

func (s *Service) Load(ctx context.Context, restaurant, dateRange string) (*entity.MenuRecord, error) {
	if strings.TrimSpace(restaurant) == "" || strings.TrimSpace(dateRange) == "" {
		return nil, fmt.Errorf("restaurant and date are required: %w", common.ErrInvalidInput)
	}
	return s.menus.Get(ctx, strings.TrimSpace(restaurant), strings.TrimSpace(dateRange))
}

func (s *Service) List(ctx context.Context) ([]entity.MenuSummary, error) {
	return s.menus.ListSummaries(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]entity.MenuRecord, error) {
	return s.menus.ListAll(ctx)
}

func (s *Service) Delete(ctx context.Context, restaurant, dateRange string) error {
	if strings.TrimSpace(restaurant) == "" || strings.TrimSpace(dateRange) == "" {
		return fmt.Errorf("restaurant and date are required: %w", common.ErrInvalidInput)
	}
	if err := s.menus.Delete(ctx, strings.TrimSpace(restaurant), strings.TrimSpace(dateRange)); err != nil {
		return err
	}
	s.logger.Info("menu.deleted", "restaurant", restaurant, "date_range", dateRange)
	return nil
}
