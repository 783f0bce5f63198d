package media

import (
	"bytes"
	"image/png"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-faster/errors"
)

// Derivative is a locally produced image rendition.
type Derivative struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Derive decodes data, scales it down to fit opts' bounding box and
// re-encodes it. Formats the encoder lacks (webp) fall back to JPEG.
// It is used by stores that do not transform images server-side.
func Derive(data []byte, opts Options) (*Derivative, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	if opts.MaxWidth > 0 && opts.MaxHeight > 0 {
		// Fit never upscales, which is the "limit" crop behaviour.
		img = imaging.Fit(img, opts.MaxWidth, opts.MaxHeight, imaging.Lanczos)
	}

	var (
		buf bytes.Buffer
		d   = &Derivative{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	)
	switch strings.ToLower(opts.Format) {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
		d.ContentType, d.Ext = "image/png", ".png"
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality(opts.Quality)))
		d.ContentType, d.Ext = "image/jpeg", ".jpg"
	}
	if err != nil {
		return nil, errors.Wrap(err, "encode image")
	}
	d.Data = buf.Bytes()
	return d, nil
}

// JPEGQuality maps a quality hint to a JPEG quality level.
func JPEGQuality(hint string) int {
	switch hint {
	case "auto:best":
		return 90
	case "auto", "auto:good", "":
		return 80
	case "auto:eco":
		return 70
	case "auto:low":
		return 60
	}
	if q, err := strconv.Atoi(hint); err == nil && q >= 1 && q <= 100 {
		return q
	}
	return 80
}
