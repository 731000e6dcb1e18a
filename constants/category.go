package constants

import "strings"

// ComplaintCategory classifies what a complaint is about.
type ComplaintCategory string

const (
	CategoryMenu    ComplaintCategory = "메뉴"
	CategoryPrice   ComplaintCategory = "가격"
	CategoryQuality ComplaintCategory = "품질"
	CategoryOther   ComplaintCategory = "기타"
)

var allCategories = []ComplaintCategory{
	CategoryMenu,
	CategoryPrice,
	CategoryQuality,
	CategoryOther,
}

// Canonicalize trims the label and reports whether it is a known category.
func Canonicalize(label string) (ComplaintCategory, bool) {
	l := strings.TrimSpace(label)
	for _, c := range allCategories {
		if string(c) == l {
			return c, true
		}
	}
	return CategoryOther, false
}
