package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	menuTable       = "menu_data"
	restaurantTable = "restaurants"
	complaintTable  = "complaints"

	// text columns are unbounded; ent maps this size to TEXT on every dialect
	textSize = 2147483647
)

var (
	menuColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "restaurant_name", Type: field.TypeString, Size: 255},
		{Name: "date_range", Type: field.TypeString, Size: 255},
		{Name: "price_lunch", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "price_dinner", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "menus", Type: field.TypeString, Size: textSize},
		{Name: "image_path", Type: field.TypeString, Size: 1024, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// MenuDataTable holds weekly menus, one row per restaurant and date range.
	MenuDataTable = &schema.Table{
		Name:       menuTable,
		Columns:    menuColumns,
		PrimaryKey: []*schema.Column{menuColumns[0]},
		Indexes: []*schema.Index{
			{Name: "menudata_restaurant_name_date_range", Unique: true, Columns: []*schema.Column{menuColumns[1], menuColumns[2]}},
			{Name: "menudata_updated_at", Unique: false, Columns: []*schema.Column{menuColumns[8]}},
		},
	}

	restaurantColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Size: 255, Unique: true},
		{Name: "price_lunch", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "price_dinner", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "has_dinner", Type: field.TypeBool, Default: false},
		{Name: "webhook_url", Type: field.TypeString, Size: 1024, Default: ""},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "sort_order", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// RestaurantsTable is the restaurant directory.
	RestaurantsTable = &schema.Table{
		Name:       restaurantTable,
		Columns:    restaurantColumns,
		PrimaryKey: []*schema.Column{restaurantColumns[0]},
		Indexes: []*schema.Index{
			{Name: "restaurant_sort_order", Unique: false, Columns: []*schema.Column{restaurantColumns[7]}},
		},
	}

	complaintColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "restaurant_name", Type: field.TypeString, Size: 255},
		{Name: "date_range", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "category", Type: field.TypeString, Size: 32},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "content", Type: field.TypeString, Size: textSize},
		{Name: "user_name", Type: field.TypeString, Size: 255},
		{Name: "user_email", Type: field.TypeString, Size: 255},
		{Name: "status", Type: field.TypeString, Size: 32, Default: "pending"},
		{Name: "admin_response", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ComplaintsTable holds complaint tickets.
	ComplaintsTable = &schema.Table{
		Name:       complaintTable,
		Columns:    complaintColumns,
		PrimaryKey: []*schema.Column{complaintColumns[0]},
		Indexes: []*schema.Index{
			{Name: "complaint_status", Unique: false, Columns: []*schema.Column{complaintColumns[8]}},
			{Name: "complaint_restaurant_name", Unique: false, Columns: []*schema.Column{complaintColumns[1]}},
			{Name: "complaint_created_at", Unique: false, Columns: []*schema.Column{complaintColumns[10]}},
		},
	}

	// Tables lists every table managed by Migrate.
	Tables = []*schema.Table{MenuDataTable, RestaurantsTable, ComplaintsTable}
)

// Migrate creates or upgrades the tables in place. It never drops columns or indexes.
func Migrate(ctx context.Context, db *DB) error {
	m, err := schema.NewMigrate(db.Driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
