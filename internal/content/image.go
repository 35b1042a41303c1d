package content

import (
	"fmt"
	"net/url"
	"strings"
)

const placeholderHost = "https://placehold.co"

// Image is an image reference with a placeholder substituted client-side
// when Src fails to load.
type Image struct {
	Src      string
	Alt      string
	Fallback string
}

// Placeholder builds a placehold.co URL showing text.
func Placeholder(width, height int, text string) string {
	return fmt.Sprintf("%s/%dx%d/f1f5f9/334155?text=%s", placeholderHost, width, height, url.QueryEscape(strings.TrimSpace(text)))
}

func newImage(src, alt string, width, height int) Image {
	img := Image{
		Src:      strings.TrimSpace(src),
		Alt:      alt,
		Fallback: Placeholder(width, height, alt),
	}
	if img.Src == "" {
		img.Src = img.Fallback
	}
	return img
}
