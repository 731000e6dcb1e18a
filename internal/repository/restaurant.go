package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
)

var restaurantSelectColumns = []string{
	"id", "name", "price_lunch", "price_dinner", "has_dinner", "webhook_url",
	"is_active", "sort_order", "created_at", "updated_at",
}

type RestaurantRepository interface {
	List(ctx context.Context, activeOnly bool) ([]entity.Restaurant, error)
	Get(ctx context.Context, id int64) (*entity.Restaurant, error)
	GetByName(ctx context.Context, name string) (*entity.Restaurant, error)
	Create(ctx context.Context, in entity.RestaurantInput) (*entity.Restaurant, error)
	Update(ctx context.Context, id int64, patch entity.RestaurantPatch) (*entity.Restaurant, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, orders []entity.SortOrder) error
	ReferenceMap(ctx context.Context) (map[string]entity.Restaurant, error)
}

type restaurantRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewRestaurantRepository(db *DB, logger *slog.Logger) RestaurantRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &restaurantRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *restaurantRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

// List returns the directory ordered by display position, then name.
func (r *restaurantRepository) List(ctx context.Context, activeOnly bool) ([]entity.Restaurant, error) {
	d := r.builder()
	t := d.Table(restaurantTable)
	sel := d.Select(t.Columns(restaurantSelectColumns...)...).From(t)
	if activeOnly {
		sel = sel.Where(entsql.EQ(t.C("is_active"), true))
	}
	q, args := sel.OrderBy(t.C("sort_order"), t.C("name")).Query()

	out, err := queryRestaurants(ctx, r.db.Driver, q, args)
	if err != nil {
		r.logger.Error("repository.restaurant.list.failed", "error", err)
		return nil, dbError("list restaurants", err)
	}
	return out, nil
}

func (r *restaurantRepository) Get(ctx context.Context, id int64) (*entity.Restaurant, error) {
	return r.getBy(ctx, "id", id)
}

func (r *restaurantRepository) GetByName(ctx context.Context, name string) (*entity.Restaurant, error) {
	return r.getBy(ctx, "name", name)
}

func (r *restaurantRepository) getBy(ctx context.Context, column string, value any) (*entity.Restaurant, error) {
	d := r.builder()
	t := d.Table(restaurantTable)
	q, args := d.Select(t.Columns(restaurantSelectColumns...)...).
		From(t).
		Where(entsql.EQ(t.C(column), value)).
		Limit(1).
		Query()

	out, err := queryRestaurants(ctx, r.db.Driver, q, args)
	if err != nil {
		return nil, dbError("get restaurant", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("restaurant %s=%v: %w", column, value, common.ErrNotFound)
	}
	return &out[0], nil
}

// Create adds a restaurant at the end of the display order. Duplicate names yield ErrConflict.
func (r *restaurantRepository) Create(ctx context.Context, in entity.RestaurantInput) (*entity.Restaurant, error) {
	if _, err := r.GetByName(ctx, in.Name); err == nil {
		return nil, fmt.Errorf("restaurant %q: %w", in.Name, common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	next, err := r.nextSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	now := stamp(r.now)
	q, args := r.builder().Insert(restaurantTable).
		Columns("name", "price_lunch", "price_dinner", "has_dinner", "webhook_url", "is_active", "sort_order", "created_at", "updated_at").
		Values(in.Name, in.PriceLunch, in.PriceDinner, in.HasDinner, in.WebhookURL, true, next, now, now).
		Query()

	var res sql.Result
	if err := r.db.Driver.Exec(ctx, q, args, &res); err != nil {
		r.logger.Error("repository.restaurant.create.failed", "name", in.Name, "error", err)
		return nil, dbError("create restaurant", err)
	}
	r.logger.Info("repository.restaurant.create", "name", in.Name, "sort_order", next)
	return r.GetByName(ctx, in.Name)
}

func (r *restaurantRepository) nextSortOrder(ctx context.Context) (int, error) {
	d := r.builder()
	t := d.Table(restaurantTable)
	q, args := d.Select(entsql.Max(t.C("sort_order"))).From(t).Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, q, args, &rows); err != nil {
		return 0, dbError("max sort order", err)
	}
	defer rows.Close()

	var maxOrder sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&maxOrder); err != nil {
			return 0, dbError("max sort order", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, dbError("max sort order", err)
	}
	if !maxOrder.Valid {
		return 1, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

// Update applies the non-nil fields of patch.
func (r *restaurantRepository) Update(ctx context.Context, id int64, patch entity.RestaurantPatch) (*entity.Restaurant, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("restaurant %d: nothing to update: %w", id, common.ErrInvalidInput)
	}
	if patch.Name != nil {
		if existing, err := r.GetByName(ctx, *patch.Name); err == nil && existing.ID != id {
			return nil, fmt.Errorf("restaurant %q: %w", *patch.Name, common.ErrConflict)
		}
	}

	u := r.builder().Update(restaurantTable)
	if patch.Name != nil {
		u.Set("name", *patch.Name)
	}
	if patch.PriceLunch != nil {
		u.Set("price_lunch", *patch.PriceLunch)
	}
	if patch.PriceDinner != nil {
		u.Set("price_dinner", *patch.PriceDinner)
	}
	if patch.HasDinner != nil {
		u.Set("has_dinner", *patch.HasDinner)
	}
	if patch.WebhookURL != nil {
		u.Set("webhook_url", *patch.WebhookURL)
	}
	if patch.IsActive != nil {
		u.Set("is_active", *patch.IsActive)
	}
	if patch.SortOrder != nil {
		u.Set("sort_order", *patch.SortOrder)
	}
	q, args := u.Set("updated_at", stamp(r.now)).Where(entsql.EQ("id", id)).Query()

	n, err := execAffected(ctx, r.db.Driver, q, args)
	if err != nil {
		r.logger.Error("repository.restaurant.update.failed", "id", id, "error", err)
		return nil, dbError("update restaurant", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("restaurant %d: %w", id, common.ErrNotFound)
	}
	return r.Get(ctx, id)
}

func (r *restaurantRepository) Delete(ctx context.Context, id int64) error {
	q, args := r.builder().Delete(restaurantTable).Where(entsql.EQ("id", id)).Query()
	n, err := execAffected(ctx, r.db.Driver, q, args)
	if err != nil {
		return dbError("delete restaurant", err)
	}
	if n == 0 {
		return fmt.Errorf("restaurant %d: %w", id, common.ErrNotFound)
	}
	r.logger.Info("repository.restaurant.delete", "id", id)
	return nil
}

// Reorder assigns every listed position in a single transaction; an unknown id rolls
// the whole batch back.
func (r *restaurantRepository) Reorder(ctx context.Context, orders []entity.SortOrder) (err error) {
	if len(orders) == 0 {
		return nil
	}
	tx, err := r.db.Driver.Tx(ctx)
	if err != nil {
		return dbError("begin reorder", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Warn("repository.restaurant.reorder.rollback_failed", "error", rbErr)
			}
		}
	}()

	now := stamp(r.now)
	for _, o := range orders {
		q, args := r.builder().Update(restaurantTable).
			Set("sort_order", o.SortOrder).
			Set("updated_at", now).
			Where(entsql.EQ("id", o.ID)).
			Query()
		n, execErr := execAffected(ctx, tx, q, args)
		if execErr != nil {
			return dbError("reorder restaurants", execErr)
		}
		if n == 0 {
			return fmt.Errorf("restaurant %d: %w", o.ID, common.ErrNotFound)
		}
	}
	if err = tx.Commit(); err != nil {
		return dbError("commit reorder", err)
	}
	r.logger.Info("repository.restaurant.reorder", "count", len(orders))
	return nil
}

// ReferenceMap indexes every restaurant by name.
func (r *restaurantRepository) ReferenceMap(ctx context.Context) (map[string]entity.Restaurant, error) {
	list, err := r.List(ctx, false)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]entity.Restaurant, len(list))
	for _, rest := range list {
		refs[rest.Name] = rest
	}
	return refs, nil
}

func queryRestaurants(ctx context.Context, eq dialect.ExecQuerier, q string, args []any) ([]entity.Restaurant, error) {
	var rows entsql.Rows
	if err := eq.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Restaurant{}
	for rows.Next() {
		var rest entity.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.PriceLunch, &rest.PriceDinner, &rest.HasDinner,
			&rest.WebhookURL, &rest.IsActive, &rest.SortOrder, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	return out, rows.Err()
}

func execAffected(ctx context.Context, eq dialect.ExecQuerier, q string, args []any) (int64, error) {
	var res sql.Result
	if err := eq.Exec(ctx, q, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
