package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoperat/centumbob/internal/entity"
)

func TestValidate_Quality(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.Quality
	}{
		{"poor when empty", `{"price":{"lunch":"","dinner":""},"menus":{}}`, entity.QualityPoor},
		{"partial without price", `{"price":{"lunch":""},"menus":{"수":{"lunch":["비빔밥"]}}}`, entity.QualityPartial},
		{"good with dinner price", `{"price":{"dinner":"8000"},"menus":{"금":{"dinner":["라면"]}}}`, entity.QualityGood},
		{"poor with price only", `{"price":{"lunch":"7000"},"menus":{}}`, entity.QualityPoor},
		{"price rejected as noise", `{"price":{"lunch":"50"},"menus":{"월":{"lunch":["국밥"]}}}`, entity.QualityPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := DecodeRaw([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, Validate(raw).Quality)
		})
	}
}

func TestValidate_ShapeTotality(t *testing.T) {
	inputs := []RawExtraction{
		nil,
		{},
		{"menus": "not an object"},
		{"menus": map[string]any{"월": "x", "화": map[string]any{"lunch": "y"}, "토": map[string]any{"lunch": []any{"짜장면"}}}},
		{"price": []any{1, 2}, "menus": map[string]any{"목": nil}},
	}
	for _, in := range inputs {
		v := Validate(in)
		v.Result.Menus.Each(func(label string, d entity.DayMenu) {
			assert.NotNil(t, d.Lunch, label)
			assert.NotNil(t, d.Dinner, label)
			assert.Empty(t, d.Lunch, label)
			assert.Empty(t, d.Dinner, label)
		})
		assert.Equal(t, entity.QualityPoor, v.Quality)
		assert.Equal(t, 0, v.TotalItems)
	}
}

func TestValidate_EndToEnd(t *testing.T) {
	raw, err := DecodeRaw([]byte(`{
		"price": {"lunch": "7000원", "dinner": ""},
		"menus": {
			"월": {"lunch": ["불고기", "불고기"], "dinner": []},
			"화": {"lunch": [], "dinner": []},
			"수": {"lunch": [], "dinner": []},
			"목": {"lunch": [], "dinner": []},
			"금": {"lunch": [], "dinner": []}
		}
	}`))
	require.NoError(t, err)

	v := Validate(raw)
	assert.Equal(t, "7,000원", v.Result.Price.Lunch)
	assert.Equal(t, "", v.Result.Price.Dinner)
	assert.Equal(t, []string{"불고기"}, v.Result.Menus.Mon.Lunch)
	assert.Equal(t, entity.QualityGood, v.Quality)
	assert.Equal(t, 1, v.TotalItems)
}

func TestValidate_NumericPrice(t *testing.T) {
	raw, err := DecodeRaw([]byte(`{"price":{"lunch":6500,"dinner":null}}`))
	require.NoError(t, err)
	v := Validate(raw)
	assert.Equal(t, "6,500원", v.Result.Price.Lunch)
	assert.Equal(t, "", v.Result.Price.Dinner)
}

func TestDecodeRaw(t *testing.T) {
	_, err := DecodeRaw([]byte(`{"price":`))
	assert.Error(t, err)

	raw, err := DecodeRaw([]byte(`[1,2,3]`))
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestDecodeRaw_RejectsTrailingData(t *testing.T) {
	_, err := DecodeRaw([]byte(`{"price":{"lunch":"7000"},"menus":{"월":{"lunch":["밥"]}}} trailing`))
	assert.Error(t, err)

	_, err = DecodeRaw([]byte(`{"menus":{}} {"menus":{}}`))
	assert.Error(t, err)
}
