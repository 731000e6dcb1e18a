package restaurant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/menu"
	"github.com/aoperat/centumbob/internal/repository"
)

// Service handles the restaurant directory.
type Service struct {
	repo      repository.RestaurantRepository
	prices    menu.Thresholds
	validator *common.Validator
	logger    *slog.Logger
}

type Option func(*Service)

// WithPriceBounds sets the range reference prices are canonicalized against.
func WithPriceBounds(t menu.Thresholds) Option {
	return func(s *Service) { s.prices = t }
}

// NewService creates a new restaurant service.
func NewService(repo repository.RestaurantRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{repo: repo, prices: menu.DefaultThresholds, validator: common.NewValidator(), logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]entity.Restaurant, error) {
	return s.repo.List(ctx, activeOnly)
}

// Create adds a restaurant. Reference prices are stored in canonical form.
func (s *Service) Create(ctx context.Context, in entity.RestaurantInput) (*entity.Restaurant, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.WebhookURL = strings.TrimSpace(in.WebhookURL)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	in.PriceLunch = s.prices.NormalizePrice(in.PriceLunch)
	in.PriceDinner = s.prices.NormalizePrice(in.PriceDinner)

	r, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("restaurant.created", "id", r.ID, "name", r.Name)
	return r, nil
}

func (s *Service) Update(ctx context.Context, id int64, patch entity.RestaurantPatch) (*entity.Restaurant, error) {
	if id <= 0 {
		return nil, fmt.Errorf("restaurant id must be positive: %w", common.ErrInvalidInput)
	}
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, &common.ValidationError{Message: "validation failed", Fields: map[string]string{"name": "is required"}}
		}
		patch.Name = &name
	}
	if patch.PriceLunch != nil {
		p := s.prices.NormalizePrice(*patch.PriceLunch)
		patch.PriceLunch = &p
	}
	if patch.PriceDinner != nil {
		p := s.prices.NormalizePrice(*patch.PriceDinner)
		patch.PriceDinner = &p
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("restaurant.deleted", "id", id)
	return nil
}

// Reorder assigns display positions to restaurants.
func (s *Service) Reorder(ctx context.Context, orders []entity.SortOrder) error {
	for i := range orders {
		if err := s.validator.Validate(orders[i]); err != nil {
			return err
		}
	}
	return s.repo.Reorder(ctx, orders)
}
