package complaint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/repository"
)

// Service handles complaint ticket business logic.
type Service struct {
	repo      repository.ComplaintRepository
	validator *common.Validator
	logger    *slog.Logger
}

// NewService creates a new complaint service.
func NewService(repo repository.ComplaintRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: common.NewValidator(), logger: logger}
}

// Create validates and files a new ticket in the pending state.
func (s *Service) Create(ctx context.Context, in entity.ComplaintInput) (*entity.Complaint, error) {
	in.RestaurantName = strings.TrimSpace(in.RestaurantName)
	in.DateRange = strings.TrimSpace(in.DateRange)
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.UserName = strings.TrimSpace(in.UserName)
	in.UserEmail = strings.TrimSpace(in.UserEmail)
	if cat, ok := constants.Canonicalize(in.Category); ok {
		in.Category = string(cat)
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("complaint.created", "complaint_id", c.ID, "restaurant", c.RestaurantName, "category", c.Category)
	return c, nil
}

// List returns tickets matching filter, newest first.
func (s *Service) List(ctx context.Context, filter entity.ComplaintFilter) ([]entity.Complaint, error) {
	if filter.Status != "" && !constants.ValidComplaintStatus(filter.Status) {
		return nil, fmt.Errorf("status %q: %w", filter.Status, common.ErrInvalidInput)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative: %w", common.ErrInvalidInput)
	}
	filter.Limit = repository.ClampLimit(filter.Limit)
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Complaint, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, uid)
}

// Update changes the status and/or admin response of a ticket.
func (s *Service) Update(ctx context.Context, id string, upd entity.ComplaintUpdate) (*entity.Complaint, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, fmt.Errorf("nothing to update: %w", common.ErrInvalidInput)
	}
	if err := s.validator.Validate(upd); err != nil {
		return nil, err
	}
	c, err := s.repo.UpdateStatus(ctx, uid, upd)
	if err != nil {
		return nil, err
	}
	s.logger.Info("complaint.updated", "complaint_id", c.ID, "status", c.Status)
	return c, nil
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("complaint id must be a UUID: %w", common.ErrInvalidInput)
	}
	return uid, nil
}
