package restaurant

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/menu"
	"github.com/aoperat/centumbob/internal/repository"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: filepath.Join(t.TempDir(), "rest.db"), DialTimeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, nil) })
	require.NoError(t, repository.Migrate(ctx, db))
	return NewService(repository.NewRestaurantRepository(db, nil), nil, opts...)
}

func ptr[T any](v T) *T { return &v }

func TestCreate_NormalizesPrices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, entity.RestaurantInput{Name: " 센텀식당 ", PriceLunch: "6500", PriceDinner: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "센텀식당", r.Name)
	assert.Equal(t, "6,500원", r.PriceLunch)
	assert.Empty(t, r.PriceDinner)
	assert.True(t, r.IsActive)

	_, err = svc.Create(ctx, entity.RestaurantInput{Name: "센텀식당"})
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = svc.Create(ctx, entity.RestaurantInput{Name: " "})
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	_, err = svc.Create(ctx, entity.RestaurantInput{Name: "B식당", WebhookURL: "not a url"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "webhook_url")
}

func TestCreate_DeploymentPriceBounds(t *testing.T) {
	svc := newTestService(t, WithPriceBounds(menu.Thresholds{MinPrice: 50, MaxPrice: 1_000_000_000}))
	ctx := context.Background()

	r, err := svc.Create(ctx, entity.RestaurantInput{Name: "A식당", PriceLunch: "50", PriceDinner: "150000000"})
	require.NoError(t, err)
	assert.Equal(t, "50원", r.PriceLunch)
	assert.Equal(t, "150,000,000원", r.PriceDinner)

	got, err := svc.Update(ctx, r.ID, entity.RestaurantPatch{PriceLunch: ptr("80")})
	require.NoError(t, err)
	assert.Equal(t, "80원", got.PriceLunch)
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, entity.RestaurantInput{Name: "A식당"})
	require.NoError(t, err)

	got, err := svc.Update(ctx, r.ID, entity.RestaurantPatch{
		Name:       ptr(" A식당 본점 "),
		PriceLunch: ptr("7000"),
		IsActive:   ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "A식당 본점", got.Name)
	assert.Equal(t, "7,000원", got.PriceLunch)
	assert.False(t, got.IsActive)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Update(ctx, 0, entity.RestaurantPatch{IsActive: ptr(true)})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.Update(ctx, r.ID, entity.RestaurantPatch{Name: ptr("   ")})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Update(ctx, r.ID+100, entity.RestaurantPatch{IsActive: ptr(true)})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestReorderAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, entity.RestaurantInput{Name: "A식당"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, entity.RestaurantInput{Name: "B식당"})
	require.NoError(t, err)

	require.NoError(t, svc.Reorder(ctx, []entity.SortOrder{{ID: a.ID, SortOrder: 2}, {ID: b.ID, SortOrder: 1}}))
	list, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B식당", list[0].Name)

	err = svc.Reorder(ctx, []entity.SortOrder{{ID: 0, SortOrder: 1}})
	assert.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), common.ErrNotFound)
}
