package domain

import (
	"fmt"
	"strings"
)

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatJPG  Format = "jpg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWEBP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatTIF  Format = "tif"
)

// Formats lists the selector options in display order.
var Formats = []Format{FormatJPEG, FormatJPG, FormatPNG, FormatGIF, FormatWEBP, FormatBMP, FormatTIFF, FormatTIF}

// ParseFormat is the closed selector used by the input surfaces.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Extension returns the download extension for the format. jpg is the only alias rewritten.
func (f Format) Extension() string {
	ext := strings.ToLower(string(f))
	if ext == "jpg" {
		ext = "jpeg"
	}
	return ext
}
