package extract

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DetectImageFormat decodes the image header and returns its mime type. Only jpeg, png, gif
// and webp are accepted; anything else wraps ErrImageFormat.
func DetectImageFormat(b []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageFormat, err)
	}
	switch format {
	case "jpeg", "png", "gif", "webp":
		return "image/" + format, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrImageFormat, format)
	}
}
