package menu

import (
	"encoding/json"
	"fmt"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/entity"
)

// RawExtraction is the untrusted document returned by the vision model.
type RawExtraction map[string]any

// Validation is the outcome of Validate.
type Validation struct {
	Result     entity.ExtractionResult
	Quality    entity.Quality
	TotalItems int
}

// DecodeRaw parses model output. Only syntax errors are reported; valid JSON that is not
// an object decodes to an empty document.
func DecodeRaw(b []byte) (RawExtraction, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	return RawExtraction{}, nil
}

// Validate cleans every day and meal, normalizes both prices and classifies the result.
func Validate(raw RawExtraction) Validation {
	return DefaultThresholds.Validate(raw)
}

// Validate is Validate with custom bounds.
func (t Thresholds) Validate(raw RawExtraction) Validation {
	res := entity.EmptyExtractionResult()

	price := asObject(raw["price"])
	res.Price.Lunch = t.NormalizePrice(itemString(price["lunch"]))
	res.Price.Dinner = t.NormalizePrice(itemString(price["dinner"]))

	menus := asObject(raw["menus"])
	for _, label := range constants.Weekdays {
		day := asObject(menus[label])
		slot := res.Menus.Day(label)
		slot.Lunch = t.CleanMenuItems(day["lunch"])
		slot.Dinner = t.CleanMenuItems(day["dinner"])
	}

	total := res.Menus.TotalItems()
	return Validation{
		Result:     res,
		Quality:    Classify(res.Price, total),
		TotalItems: total,
	}
}

// Classify derives the quality label from prices and the number of cleaned items.
func Classify(p entity.Price, totalItems int) entity.Quality {
	switch {
	case totalItems > 0 && p.Any():
		return entity.QualityGood
	case totalItems > 0:
		return entity.QualityPartial
	default:
		return entity.QualityPoor
	}
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
