package preview

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

const DefaultMaxDimension = 512

// Thumbnailer renders a bounded PNG preview of the selected image.
type Thumbnailer struct {
	maxDimension int
}

func NewThumbnailer(maxDimension int) *Thumbnailer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Thumbnailer{maxDimension: maxDimension}
}

// Displayable returns a PNG that fits into the configured box. Images already inside the box are kept
// at their size; undecodable input is returned unchanged.
func (t *Thumbnailer) Displayable(data []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		log.Debug().Err(err).Msg("preview not decodable, using original bytes")
		return data
	}

	bounds := img.Bounds()
	if bounds.Dx() > t.maxDimension || bounds.Dy() > t.maxDimension {
		img = imaging.Fit(img, t.maxDimension, t.maxDimension, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		log.Warn().Err(err).Msg("failed to encode preview, using original bytes")
		return data
	}

	return buf.Bytes()
}
