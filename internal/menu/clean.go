package menu

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ws matches the same whitespace set as the viewer's JavaScript runtime.
const ws = `\s\v\p{Z}\x{FEFF}`

var (
	reSingleChar  = regexp.MustCompile(`^[0-9가-힣]$`)
	rePlaceholder = regexp.MustCompile(`(?i)^(메뉴|menu|item|항목|새[` + ws + `]*메뉴)\d*$`)
	rePriceLike   = regexp.MustCompile(`^\d+[,\d]*원?$`)
	reSymbolsOnly = regexp.MustCompile(`^[^\w가-힣` + ws + `]+$`)
	reWhitespace  = regexp.MustCompile(`[` + ws + `]+`)
)

// CleanMenuItems filters and normalizes candidate menu items. Anything that is not a
// sequence yields an empty slice.
func CleanMenuItems(raw any) []string {
	return DefaultThresholds.CleanMenuItems(raw)
}

// CleanMenuItems is CleanMenuItems with custom bounds.
func (t Thresholds) CleanMenuItems(raw any) []string {
	t = t.withDefaults()

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return []string{}
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		s, ok := t.cleanItem(itemString(it))
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// cleanItem applies the rejection rules in order and returns the normalized item.
func (t Thresholds) cleanItem(s string) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	switch {
	case s == "":
		return "", false
	case n < t.MinItemLen && !reSingleChar.MatchString(s):
		return "", false
	case rePlaceholder.MatchString(s):
		return "", false
	case rePriceLike.MatchString(s):
		return "", false
	case reSymbolsOnly.MatchString(s):
		return "", false
	case n > t.MaxItemLen:
		return "", false
	}
	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
	return s, s != ""
}

// itemString coerces a decoded JSON scalar to text. Objects, arrays and null become "".
func itemString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
