package menu

import (
	"regexp"
	"strconv"
	"strings"
)

// CurrencyMarker is appended to every canonical price.
const CurrencyMarker = "원"

var (
	reNonPriceChars = regexp.MustCompile(`[^\d,원]`)
	reNonDigit      = regexp.MustCompile(`\D`)
)

// NormalizePrice converts a free-form price into "<grouped digits>원", or "" when the
// value is missing or outside the plausible range.
func NormalizePrice(raw string) string {
	return DefaultThresholds.NormalizePrice(raw)
}

// NormalizePrice is NormalizePrice with custom bounds.
func (t Thresholds) NormalizePrice(raw string) string {
	t = t.withDefaults()
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = reNonPriceChars.ReplaceAllString(s, "")
	digits := reNonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return ""
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < t.MinPrice || n >= t.MaxPrice {
		return ""
	}
	return groupThousands(n) + CurrencyMarker
}

// groupThousands formats a non-negative integer with a comma every three digits.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
