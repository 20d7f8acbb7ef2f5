package frame

import (
	"strings"

	"github.com/pkg/errors"
)

type MediaType string

const (
	MediaUnknown MediaType = ""
	MediaImage   MediaType = "image"
	MediaVideo   MediaType = "video"
)

func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaImage:
		return MediaImage, nil
	case MediaVideo:
		return MediaVideo, nil
	}
	return MediaUnknown, errors.Errorf("media type must be 'image' or 'video', got %q", s)
}
