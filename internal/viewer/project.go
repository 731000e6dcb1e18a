// Package viewer converts stored menu records into the static data consumed by the public
// viewer site and writes the published artifacts.
package viewer

import (
	"encoding/base64"
	"path"
	"path/filepath"
	"strings"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/menu"
)

// ProjectionType is the only content type the viewer renders.
const ProjectionType = "text"

// Project builds the viewer entry for one record. Reference prices win over the record's
// own prices when non-empty. inlineImage, when given, is embedded as a data URL; otherwise
// the image is referenced by base name under images/.
func Project(rec entity.MenuRecord, inlineImage []byte, ref *entity.Restaurant) entity.ViewerProjection {
	return project(menu.DefaultThresholds, rec, inlineImage, ref)
}

func project(prices menu.Thresholds, rec entity.MenuRecord, inlineImage []byte, ref *entity.Restaurant) entity.ViewerProjection {
	lunch, dinner := rec.PriceLunch, rec.PriceDinner
	if ref != nil {
		if strings.TrimSpace(ref.PriceLunch) != "" {
			lunch = ref.PriceLunch
		}
		if strings.TrimSpace(ref.PriceDinner) != "" {
			dinner = ref.PriceDinner
		}
	}

	return entity.ViewerProjection{
		Name: rec.RestaurantName,
		Type: ProjectionType,
		Price: entity.Price{
			Lunch:  prices.NormalizePrice(lunch),
			Dinner: prices.NormalizePrice(dinner),
		},
		Data: entity.ViewerData{
			Date:  rec.DateRange,
			Menus: projectWeek(rec.Menus),
			Text:  "",
		},
		ImageURLs: imageURLs(rec.ImagePath, inlineImage),
	}
}

func projectWeek(w entity.WeeklyMenu) entity.ViewerWeek {
	meals := func(d entity.DayMenu) entity.ViewerMeals {
		d = d.Normalized()
		return entity.ViewerMeals{
			Lunch:  append([]string{}, d.Lunch...),
			Dinner: append([]string{}, d.Dinner...),
		}
	}
	return entity.ViewerWeek{
		Mon: meals(w.Mon),
		Tue: meals(w.Tue),
		Wed: meals(w.Wed),
		Thu: meals(w.Thu),
		Fri: meals(w.Fri),
	}
}

func imageURLs(imagePath string, inline []byte) []string {
	switch {
	case len(inline) > 0:
		mt := constants.MimeForExt(filepath.Ext(imagePath))
		return []string{"data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(inline)}
	case imagePath != "":
		return []string{path.Join("images", ImageBaseName(imagePath))}
	default:
		return []string{}
	}
}

// ImageBaseName returns the file name of a stored image path using either separator.
func ImageBaseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
