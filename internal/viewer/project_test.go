package viewer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoperat/centumbob/internal/entity"
)

func sampleRecord() entity.MenuRecord {
	w := entity.NewWeeklyMenu()
	w.Mon.Lunch = []string{"김치찌개", "계란말이"}
	w.Wed.Dinner = []string{"돈까스"}
	return entity.MenuRecord{
		RestaurantName: "센텀식당",
		DateRange:      "3/3 ~ 3/7",
		PriceLunch:     "7000",
		PriceDinner:    "",
		Menus:          w,
		ImagePath:      "센텀식당/3_3___3_7/image_1700000000000_abcd1234.png",
	}
}

func TestProject_Basics(t *testing.T) {
	rec := sampleRecord()
	p := Project(rec, nil, nil)

	assert.Equal(t, "센텀식당", p.Name)
	assert.Equal(t, "text", p.Type)
	assert.Equal(t, "7,000원", p.Price.Lunch)
	assert.Equal(t, "", p.Price.Dinner)
	assert.Equal(t, "3/3 ~ 3/7", p.Data.Date)
	assert.Equal(t, "", p.Data.Text)
	assert.Equal(t, []string{"김치찌개", "계란말이"}, p.Data.Menus.Mon.Lunch)
	assert.Equal(t, []string{"돈까스"}, p.Data.Menus.Wed.Dinner)
	assert.Equal(t, []string{}, p.Data.Menus.Fri.Lunch)
	assert.Equal(t, []string{"images/image_1700000000000_abcd1234.png"}, p.ImageURLs)
}

func TestProject_MissingDaysSerializeEmpty(t *testing.T) {
	rec := entity.MenuRecord{RestaurantName: "A", DateRange: "x"}
	b, err := json.Marshal(Project(rec, nil, nil))
	require.NoError(t, err)

	var doc struct {
		Data struct {
			Menus map[string]map[string][]string `json:"menus"`
		} `json:"data"`
		ImageURLs []string `json:"imageUrls"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	for _, d := range []string{"월", "화", "수", "목", "금"} {
		require.Contains(t, doc.Data.Menus, d)
		assert.NotNil(t, doc.Data.Menus[d]["점심"])
		assert.NotNil(t, doc.Data.Menus[d]["저녁"])
	}
	assert.NotNil(t, doc.ImageURLs)
	assert.Empty(t, doc.ImageURLs)
}

func TestProject_ReferencePriceWins(t *testing.T) {
	rec := sampleRecord()
	rec.PriceDinner = "9000원"

	p := Project(rec, nil, &entity.Restaurant{PriceLunch: "8,500", PriceDinner: " "})
	assert.Equal(t, "8,500원", p.Price.Lunch)
	assert.Equal(t, "9,000원", p.Price.Dinner, "blank reference falls back to record")
}

func TestProject_InlineImage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b.png", "data:image/png;base64,AQID"},
		{"a/b.GIF", "data:image/gif;base64,AQID"},
		{"a/b.webp", "data:image/webp;base64,AQID"},
		{"a/b.jpeg", "data:image/jpeg;base64,AQID"},
		{"", "data:image/jpeg;base64,AQID"},
	}
	for _, tt := range tests {
		rec := sampleRecord()
		rec.ImagePath = tt.path
		p := Project(rec, []byte{1, 2, 3}, nil)
		assert.Equal(t, []string{tt.want}, p.ImageURLs, tt.path)
	}
}

func TestProject_WindowsPathBaseName(t *testing.T) {
	rec := sampleRecord()
	rec.ImagePath = `uploads\센텀식당\img.jpg`
	assert.Equal(t, []string{"images/img.jpg"}, Project(rec, nil, nil).ImageURLs)
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	rec := sampleRecord()
	p := Project(rec, nil, nil)
	p.Data.Menus.Mon.Lunch[0] = "changed"
	assert.Equal(t, "김치찌개", rec.Menus.Mon.Lunch[0])
}

func TestProject_Deterministic(t *testing.T) {
	rec := sampleRecord()
	ref := &entity.Restaurant{PriceLunch: "6000"}
	a, _ := json.Marshal(Project(rec, []byte("img"), ref))
	b, _ := json.Marshal(Project(rec, []byte("img"), ref))
	assert.Equal(t, string(a), string(b))
}
