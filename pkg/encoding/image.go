package encoding

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// ParseImageFormat maps a format name or file extension to an imaging format.
func ParseImageFormat(name string) (imaging.Format, error) {
	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}
	return imaging.FormatFromExtension(name)
}

// FormatExt returns the file extension written for format.
func FormatExt(format imaging.Format) string {
	switch format {
	case imaging.JPEG:
		return ".jpg"
	case imaging.TIFF:
		return ".tif"
	}
	return "." + strings.ToLower(format.String())
}

// PaintCanvas resamples img to width x height and draws it over a canvas filled with bg.
func PaintCanvas(img image.Image, width int, height int, filter imaging.ResampleFilter, bg color.Color) image.Image {
	if width <= 0 || height <= 0 {
		return imaging.New(width, height, bg)
	}
	return imaging.OverlayCenter(
		imaging.New(width, height, bg),
		imaging.Resize(img, width, height, filter),
		1,
	)
}

// Encode writes img in format. PNG uses best compression; quality applies to JPEG.
func Encode(w io.Writer, img image.Image, format imaging.Format, quality int) error {
	switch format {
	case imaging.PNG:
		return imaging.Encode(w, img, format, imaging.PNGCompressionLevel(png.BestCompression))
	case imaging.JPEG:
		return imaging.Encode(w, img, format, imaging.JPEGQuality(quality))
	}
	return imaging.Encode(w, img, format)
}
