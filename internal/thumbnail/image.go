package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeImage interprets raw bytes as an image and reports the source format.
func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// flatten composites the image over an opaque white background. JPEG cannot
// carry alpha, so paletted, alpha, and grayscale inputs all land in opaque
// 8-bit color here. Cannot fail once decode has succeeded.
func flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(dst, img, image.Pt(0, 0), 1.0)
}

// makeThumbnail flattens the image and shrinks it so neither dimension
// exceeds the bound, preserving aspect ratio. Images already inside the
// bound keep their original dimensions; nothing is ever upscaled.
func makeThumbnail(img image.Image, maxWidth, maxHeight int) *image.NRGBA {
	return imaging.Fit(flatten(img), maxWidth, maxHeight, imaging.Lanczos)
}

// encodeJPEG produces the final thumbnail bytes at the given quality. The
// encoder is deterministic: identical input pixels yield identical bytes.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
