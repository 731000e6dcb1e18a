package llm

import (
	"encoding/base64"
	"strings"
)

// DataURL encodes an image as an inline data URL. An empty mime type defaults to JPEG.
func DataURL(img Image) string {
	mt := strings.TrimSpace(img.MimeType)
	if mt == "" {
		mt = "image/jpeg"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(img.Bytes)
}

// StripCodeFences removes a surrounding ```json fence some models add despite JSON mode.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
