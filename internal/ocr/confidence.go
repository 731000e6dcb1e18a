package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reWeekday = regexp.MustCompile(`(?m)[월화수목금]요일|\([월화수목금]\)|^\s*[월화수목금][\s:]`)
	rePrice   = regexp.MustCompile(`\d{1,3}(,\d{3})+\s*원?|\d+\s*원`)
	reMeal    = regexp.MustCompile(`중식|석식|점심|저녁|조식`)
)

// heuristicConfidence scores how much the text looks like a weekly menu board.
func heuristicConfidence(txt string) float32 {
	score := float32(0.2)
	if reWeekday.MatchString(txt) {
		score += 0.2
	}
	if rePrice.MatchString(txt) {
		score += 0.15
	}
	if reMeal.MatchString(txt) || hasHangul(txt) {
		score += 0.15
	}
	if len([]rune(strings.TrimSpace(txt))) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
