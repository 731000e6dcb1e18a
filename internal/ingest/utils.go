package ingest

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aoperat/centumbob/constants"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9가-힣]`)

// AllowedExt checks if a file extension is an accepted menu image type.
func AllowedExt(ext string) bool {
	return constants.IsImageExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// SafeName replaces every character outside ASCII letters, digits and Hangul syllables
// with an underscore so the value can be used as a single path segment.
func SafeName(s string) string {
	s = unsafeNameChars.ReplaceAllString(strings.TrimSpace(s), "_")
	if s == "" {
		return "_"
	}
	return s
}
