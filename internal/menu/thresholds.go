// Package menu holds the rules that turn untrusted OCR and model output into a
// normalized weekly menu: price normalization, item cleaning and validation.
package menu

// Thresholds are the heuristic bounds used to reject OCR noise. They were tuned on
// photographed cafeteria boards and can be overridden per deployment.
type Thresholds struct {
	MinPrice   int64 // inclusive
	MaxPrice   int64 // exclusive
	MinItemLen int   // runes
	MaxItemLen int   // runes
}

// DefaultThresholds are used by the package level helpers.
var DefaultThresholds = Thresholds{
	MinPrice:   100,
	MaxPrice:   100_000_000,
	MinItemLen: 2,
	MaxItemLen: 200,
}

// withDefaults fills unset bounds so a partially configured value stays usable.
func (t Thresholds) withDefaults() Thresholds {
	if t.MinPrice <= 0 {
		t.MinPrice = DefaultThresholds.MinPrice
	}
	if t.MaxPrice <= 0 {
		t.MaxPrice = DefaultThresholds.MaxPrice
	}
	if t.MinItemLen <= 0 {
		t.MinItemLen = DefaultThresholds.MinItemLen
	}
	if t.MaxItemLen <= 0 {
		t.MaxItemLen = DefaultThresholds.MaxItemLen
	}
	return t
}
