package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
)

var menuSelectColumns = []string{
	"id", "restaurant_name", "date_range", "price_lunch", "price_dinner",
	"menus", "image_path", "created_at", "updated_at",
}

type MenuRepository interface {
	Upsert(ctx context.Context, rec entity.MenuRecord) (*entity.MenuRecord, error)
	Get(ctx context.Context, restaurant, dateRange string) (*entity.MenuRecord, error)
	ListAll(ctx context.Context) ([]entity.MenuRecord, error)
	ListSummaries(ctx context.Context) ([]entity.MenuSummary, error)
	Delete(ctx context.Context, restaurant, dateRange string) error
}

type menuRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewMenuRepository(db *DB, logger *slog.Logger) MenuRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &menuRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *menuRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

// Upsert inserts the record or, when (restaurant, date range) already exists, replaces its
// prices, menus and image path. The stored row is returned.
func (r *menuRepository) Upsert(ctx context.Context, rec entity.MenuRecord) (*entity.MenuRecord, error) {
	menus, err := json.Marshal(rec.Menus.Normalized())
	if err != nil {
		return nil, fmt.Errorf("encode menus: %w", err)
	}
	now := stamp(r.now)

	q, args := r.builder().Insert(menuTable).
		Columns("restaurant_name", "date_range", "price_lunch", "price_dinner", "menus", "image_path", "created_at", "updated_at").
		Values(rec.RestaurantName, rec.DateRange, rec.PriceLunch, rec.PriceDinner, string(menus), rec.ImagePath, now, now).
		OnConflict(
			entsql.ConflictColumns("restaurant_name", "date_range"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("price_lunch")
				u.SetExcluded("price_dinner")
				u.SetExcluded("menus")
				u.SetExcluded("image_path")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	var res sql.Result
	if err := r.db.Driver.Exec(ctx, q, args, &res); err != nil {
		r.logger.Error("repository.menu.upsert.failed", "restaurant", rec.RestaurantName, "date_range", rec.DateRange, "error", err)
		return nil, dbError("upsert menu", err)
	}
	r.logger.Debug("repository.menu.upsert", "restaurant", rec.RestaurantName, "date_range", rec.DateRange)
	return r.Get(ctx, rec.RestaurantName, rec.DateRange)
}

func (r *menuRepository) Get(ctx context.Context, restaurant, dateRange string) (*entity.MenuRecord, error) {
	d := r.builder()
	t := d.Table(menuTable)
	q, args := d.Select(t.Columns(menuSelectColumns...)...).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("restaurant_name"), restaurant),
			entsql.EQ(t.C("date_range"), dateRange),
		)).
		Limit(1).
		Query()

	recs, err := r.queryRecords(ctx, r.db.Driver, q, args)
	if err != nil {
		return nil, dbError("get menu", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("menu %q/%q: %w", restaurant, dateRange, common.ErrNotFound)
	}
	return &recs[0], nil
}

// ListAll returns every record grouped by restaurant, newest first within a restaurant.
func (r *menuRepository) ListAll(ctx context.Context) ([]entity.MenuRecord, error) {
	d := r.builder()
	t := d.Table(menuTable)
	q, args := d.Select(t.Columns(menuSelectColumns...)...).
		From(t).
		OrderBy(t.C("restaurant_name"), entsql.Desc(t.C("updated_at")), entsql.Desc(t.C("id"))).
		Query()

	recs, err := r.queryRecords(ctx, r.db.Driver, q, args)
	if err != nil {
		r.logger.Error("repository.menu.list.failed", "error", err)
		return nil, dbError("list menus", err)
	}
	return recs, nil
}

func (r *menuRepository) ListSummaries(ctx context.Context) ([]entity.MenuSummary, error) {
	d := r.builder()
	t := d.Table(menuTable)
	q, args := d.Select(t.Columns("id", "restaurant_name", "date_range", "created_at", "updated_at")...).
		From(t).
		OrderBy(entsql.Desc(t.C("updated_at")), entsql.Desc(t.C("id"))).
		Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return nil, dbError("list menu summaries", err)
	}
	defer rows.Close()

	out := []entity.MenuSummary{}
	for rows.Next() {
		var s entity.MenuSummary
		if err := rows.Scan(&s.ID, &s.RestaurantName, &s.DateRange, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, dbError("scan menu summary", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list menu summaries", err)
	}
	return out, nil
}

func (r *menuRepository) Delete(ctx context.Context, restaurant, dateRange string) error {
	q, args := r.builder().Delete(menuTable).
		Where(entsql.And(
			entsql.EQ("restaurant_name", restaurant),
			entsql.EQ("date_range", dateRange),
		)).
		Query()

	var res sql.Result
	if err := r.db.Driver.Exec(ctx, q, args, &res); err != nil {
		return dbError("delete menu", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("delete menu", err)
	}
	if n == 0 {
		return fmt.Errorf("menu %q/%q: %w", restaurant, dateRange, common.ErrNotFound)
	}
	r.logger.Info("repository.menu.delete", "restaurant", restaurant, "date_range", dateRange)
	return nil
}

func (r *menuRepository) queryRecords(ctx context.Context, eq dialect.ExecQuerier, q string, args []any) ([]entity.MenuRecord, error) {
	var rows entsql.Rows
	if err := eq.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.MenuRecord{}
	for rows.Next() {
		var (
			rec   entity.MenuRecord
			menus string
		)
		if err := rows.Scan(&rec.ID, &rec.RestaurantName, &rec.DateRange, &rec.PriceLunch, &rec.PriceDinner,
			&menus, &rec.ImagePath, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(menus), &rec.Menus); err != nil {
			r.logger.Warn("repository.menu.decode.failed", "id", rec.ID, "error", err)
		}
		rec.Menus = rec.Menus.Normalized()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// stamp returns the current time in UTC at the precision every supported dialect keeps.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
