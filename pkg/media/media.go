package media

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"degrader/pkg/frame"
)

var (
	ImageExts = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".webp"}
	VideoExts = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv", ".mpeg", ".mpg", ".webm"}
)

var ErrUnsupported = errors.New("unsupported media")

// Metadata describes a loaded or saved media item.
type Metadata struct {
	Path      string            `json:"path"`
	MediaType frame.MediaType   `json:"media_type"`
	Format    string            `json:"format"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Frames    int               `json:"frames"`
	FPS       float64           `json:"fps,omitempty"`
	Codec     string            `json:"codec,omitempty"`
	Size      bytesize.ByteSize `json:"size"`
}

func (m *Metadata) String() string {
	if m.MediaType == frame.MediaVideo {
		return fmt.Sprintf("%s %dx%d %d frames @ %.2ffps %s", m.Format, m.Width, m.Height, m.Frames, m.FPS, m.Size)
	}
	return fmt.Sprintf("%s %dx%d %s", m.Format, m.Width, m.Height, m.Size)
}

func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Ext returns the lowercased extension of a local path or a URL path.
func Ext(src string) string {
	if IsRemote(src) {
		if u, err := url.Parse(src); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(filepath.Ext(src))
}

// Stem is the base name of src without its extension.
func Stem(src string) string {
	base := filepath.Base(src)
	if IsRemote(src) {
		if u, err := url.Parse(src); err == nil {
			base = path.Base(u.Path)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Detect infers the media type from the file extension.
func Detect(src string) (frame.MediaType, error) {
	ext := Ext(src)
	switch {
	case lo.Contains(ImageExts, ext):
		return frame.MediaImage, nil
	case lo.Contains(VideoExts, ext):
		return frame.MediaVideo, nil
	}
	return frame.MediaUnknown, errors.Wrapf(ErrUnsupported, "extension %q", ext)
}
