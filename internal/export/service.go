package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aoperat/centumbob/internal/entity"
)

const SheetName = "Menus"

// Headers is the first row of the exported sheet.
var Headers = []string{
	"Restaurant",
	"Date Range",
	"Day",
	"Lunch",
	"Dinner",
	"Lunch Price",
	"Dinner Price",
}

// MenuLister yields stored records, restaurant ascending then newest first.
type MenuLister interface {
	ListAll(ctx context.Context) ([]entity.MenuRecord, error)
}

// Service produces XLSX workbooks of stored weekly menus.
type Service struct {
	menus  MenuLister
	logger *slog.Logger
}

func NewService(menus MenuLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{menus: menus, logger: logger}
}

// ExportMenusXLSX writes one row per record and weekday. An empty restaurant exports everything.
func (s *Service) ExportMenusXLSX(ctx context.Context, restaurant string) ([]byte, error) {
	start := time.Now()
	restaurant = strings.TrimSpace(restaurant)

	recs, err := s.menus.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query menus: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	row := 2
	exported := 0
	for _, r := range recs {
		if restaurant != "" && r.RestaurantName != restaurant {
			continue
		}
		exported++
		r.Menus.Each(func(day string, d entity.DayMenu) {
			values := []any{
				r.RestaurantName,
				r.DateRange,
				day,
				strings.Join(d.Lunch, ", "),
				strings.Join(d.Dinner, ", "),
				r.PriceLunch,
				r.PriceDinner,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(SheetName, cell, v)
			}
			row++
		})
	}

	_ = f.SetColWidth(SheetName, "A", "A", 20)
	_ = f.SetColWidth(SheetName, "B", "B", 18)
	_ = f.SetColWidth(SheetName, "C", "C", 6)
	_ = f.SetColWidth(SheetName, "D", "E", 48)
	_ = f.SetColWidth(SheetName, "F", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"restaurant", restaurant,
		"records", exported,
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
