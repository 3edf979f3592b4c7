package domain

import "strings"

// ImageFormat selects the raster or vector export encoding.
type ImageFormat string

// ImageFormat values.
const (
	ImagePNG ImageFormat = "png"
	ImageSVG ImageFormat = "svg"
)

// ParseImageFormat parses an image format name.
func ParseImageFormat(raw string) (ImageFormat, error) {
	f := ImageFormat(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")))
	switch f {
	case ImagePNG, ImageSVG:
		return f, nil
	default:
		return "", ErrInvalidImageFormat
	}
}

// Extension returns the file extension without the dot.
func (f ImageFormat) Extension() string {
	return string(f)
}

// ContentType returns the MIME type.
func (f ImageFormat) ContentType() string {
	if f == ImageSVG {
		return "image/svg+xml"
	}
	return "image/png"
}
