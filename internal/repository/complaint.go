package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
)

const (
	DefaultComplaintLimit = 100
	MaxComplaintLimit     = 500
)

var complaintSelectColumns = []string{
	"id", "restaurant_name", "date_range", "category", "title", "content", "user_name",
	"user_email", "status", "admin_response", "created_at", "updated_at",
}

type ComplaintRepository interface {
	Create(ctx context.Context, in entity.ComplaintInput) (*entity.Complaint, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Complaint, error)
	List(ctx context.Context, filter entity.ComplaintFilter) ([]entity.Complaint, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, upd entity.ComplaintUpdate) (*entity.Complaint, error)
}

type complaintRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewComplaintRepository(db *DB, logger *slog.Logger) ComplaintRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &complaintRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.New,
	}
}

func (r *complaintRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

// Create stores a new ticket in the pending state.
func (r *complaintRepository) Create(ctx context.Context, in entity.ComplaintInput) (*entity.Complaint, error) {
	id := r.newID()
	now := stamp(r.now)
	q, args := r.builder().Insert(complaintTable).
		Columns("id", "restaurant_name", "date_range", "category", "title", "content", "user_name",
			"user_email", "status", "admin_response", "created_at", "updated_at").
		Values(id, in.RestaurantName, in.DateRange, in.Category, in.Title, in.Content, in.UserName,
			in.UserEmail, string(constants.ComplaintPending), "", now, now).
		Query()

	if _, err := execAffected(ctx, r.db.Driver, q, args); err != nil {
		r.logger.Error("repository.complaint.create.failed", "restaurant", in.RestaurantName, "error", err)
		return nil, dbError("create complaint", err)
	}
	r.logger.Info("repository.complaint.create", "complaint_id", id, "restaurant", in.RestaurantName, "category", in.Category)
	return r.Get(ctx, id)
}

func (r *complaintRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Complaint, error) {
	d := r.builder()
	t := d.Table(complaintTable)
	q, args := d.Select(t.Columns(complaintSelectColumns...)...).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Limit(1).
		Query()

	out, err := r.query(ctx, q, args)
	if err != nil {
		return nil, dbError("get complaint", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("complaint %s: %w", id, common.ErrNotFound)
	}
	return &out[0], nil
}

// List returns tickets newest first. Limit defaults to 100 and is capped at 500.
func (r *complaintRepository) List(ctx context.Context, filter entity.ComplaintFilter) ([]entity.Complaint, error) {
	d := r.builder()
	t := d.Table(complaintTable)
	sel := d.Select(t.Columns(complaintSelectColumns...)...).From(t)

	var preds []*entsql.Predicate
	if filter.Status != "" {
		preds = append(preds, entsql.EQ(t.C("status"), filter.Status))
	}
	if filter.RestaurantName != "" {
		preds = append(preds, entsql.EQ(t.C("restaurant_name"), filter.RestaurantName))
	}
	if filter.UserEmail != "" {
		preds = append(preds, entsql.EQ(t.C("user_email"), filter.UserEmail))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	q, args := sel.
		OrderBy(entsql.Desc(t.C("created_at")), entsql.Desc(t.C("id"))).
		Limit(ClampLimit(filter.Limit)).
		Offset(offset).
		Query()

	out, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("repository.complaint.list.failed", "error", err)
		return nil, dbError("list complaints", err)
	}
	return out, nil
}

// UpdateStatus changes the status and/or the admin response of a ticket.
func (r *complaintRepository) UpdateStatus(ctx context.Context, id uuid.UUID, upd entity.ComplaintUpdate) (*entity.Complaint, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("complaint %s: nothing to update: %w", id, common.ErrInvalidInput)
	}
	if upd.Status != nil && !constants.ValidComplaintStatus(*upd.Status) {
		return nil, fmt.Errorf("complaint status %q: %w", *upd.Status, common.ErrInvalidInput)
	}

	u := r.builder().Update(complaintTable)
	if upd.Status != nil {
		u.Set("status", *upd.Status)
	}
	if upd.AdminResponse != nil {
		u.Set("admin_response", *upd.AdminResponse)
	}
	q, args := u.Set("updated_at", stamp(r.now)).Where(entsql.EQ("id", id)).Query()

	n, err := execAffected(ctx, r.db.Driver, q, args)
	if err != nil {
		return nil, dbError("update complaint", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("complaint %s: %w", id, common.ErrNotFound)
	}
	r.logger.Info("repository.complaint.update", "complaint_id", id)
	return r.Get(ctx, id)
}

func (r *complaintRepository) query(ctx context.Context, q string, args []any) ([]entity.Complaint, error) {
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Complaint{}
	for rows.Next() {
		var c entity.Complaint
		if err := rows.Scan(&c.ID, &c.RestaurantName, &c.DateRange, &c.Category, &c.Title, &c.Content,
			&c.UserName, &c.UserEmail, &c.Status, &c.AdminResponse, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ClampLimit applies the listing defaults: non-positive means 100, anything above 500 is capped.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultComplaintLimit
	case limit > MaxComplaintLimit:
		return MaxComplaintLimit
	default:
		return limit
	}
}
