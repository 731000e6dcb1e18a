package entity

import (
	"encoding/json"

	"github.com/aoperat/centumbob/constants"
)

// Quality summarises whether an extraction produced usable prices and menu items.
type Quality string

const (
	QualityGood    Quality = "good"
	QualityPartial Quality = "partial"
	QualityPoor    Quality = "poor"
)

// DayMenu holds the lunch and dinner items of a single day in extraction order.
type DayMenu struct {
	Lunch  []string `json:"lunch"`
	Dinner []string `json:"dinner"`
}

// MarshalJSON never emits null slots.
func (d DayMenu) MarshalJSON() ([]byte, error) {
	type plain DayMenu
	return json.Marshal(plain(d.Normalized()))
}

// Normalized replaces nil slots with empty slices.
func (d DayMenu) Normalized() DayMenu {
	if d.Lunch == nil {
		d.Lunch = []string{}
	}
	if d.Dinner == nil {
		d.Dinner = []string{}
	}
	return d
}

// Count returns the number of items across both meals.
func (d DayMenu) Count() int { return len(d.Lunch) + len(d.Dinner) }

// WeeklyMenu is a Monday to Friday menu with one named field per day.
type WeeklyMenu struct {
	Mon DayMenu `json:"월"`
	Tue DayMenu `json:"화"`
	Wed DayMenu `json:"수"`
	Thu DayMenu `json:"목"`
	Fri DayMenu `json:"금"`
}

// NewWeeklyMenu returns a menu with every day present and empty.
func NewWeeklyMenu() WeeklyMenu {
	return WeeklyMenu{}.Normalized()
}

// Day returns the slot for a weekday label, or nil for an unknown label.
func (w *WeeklyMenu) Day(label string) *DayMenu {
	switch label {
	case constants.Monday:
		return &w.Mon
	case constants.Tuesday:
		return &w.Tue
	case constants.Wednesday:
		return &w.Wed
	case constants.Thursday:
		return &w.Thu
	case constants.Friday:
		return &w.Fri
	}
	return nil
}

// Each visits the days in display order.
func (w WeeklyMenu) Each(fn func(label string, d DayMenu)) {
	for _, label := range constants.Weekdays {
		fn(label, *w.Day(label))
	}
}

// Normalized replaces every nil slot with an empty slice.
func (w WeeklyMenu) Normalized() WeeklyMenu {
	w.Mon = w.Mon.Normalized()
	w.Tue = w.Tue.Normalized()
	w.Wed = w.Wed.Normalized()
	w.Thu = w.Thu.Normalized()
	w.Fri = w.Fri.Normalized()
	return w
}

// TotalItems counts items across all days and meals.
func (w WeeklyMenu) TotalItems() int {
	n := 0
	w.Each(func(_ string, d DayMenu) { n += d.Count() })
	return n
}

// Price holds canonical display prices; an empty string means unknown.
type Price struct {
	Lunch  string `json:"lunch"`
	Dinner string `json:"dinner"`
}

// Any reports whether at least one price is set.
func (p Price) Any() bool { return p.Lunch != "" || p.Dinner != "" }

// ExtractionResult is the normalized output of menu extraction.
type ExtractionResult struct {
	Price Price      `json:"price"`
	Menus WeeklyMenu `json:"menus"`
}

// EmptyExtractionResult is the canonical result used when nothing could be read.
func EmptyExtractionResult() ExtractionResult {
	return ExtractionResult{Menus: NewWeeklyMenu()}
}
