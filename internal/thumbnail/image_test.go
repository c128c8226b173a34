package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestMakeThumbnail_BoundsDimensions(t *testing.T) {
	cases := []struct {
		name             string
		srcW, srcH       int
		wantW, wantH     int
	}{
		{"landscape shrinks", 400, 300, 100, 75},
		{"portrait shrinks", 300, 400, 75, 100},
		{"square shrinks", 500, 500, 100, 100},
		{"already within bound keeps size", 50, 40, 50, 40},
		{"exactly at bound keeps size", 100, 100, 100, 100},
		{"one dimension over", 200, 80, 100, 40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := solidImage(tc.srcW, tc.srcH, color.RGBA{R: 10, G: 20, B: 30, A: 255})
			thumb := makeThumbnail(src, 100, 100)
			assert.Equal(t, tc.wantW, thumb.Bounds().Dx())
			assert.Equal(t, tc.wantH, thumb.Bounds().Dy())
			assert.LessOrEqual(t, thumb.Bounds().Dx(), 100)
			assert.LessOrEqual(t, thumb.Bounds().Dy(), 100)
		})
	}
}

func TestDecodeImage_ReportsFormat(t *testing.T) {
	data := encodePNG(t, solidImage(10, 10, color.RGBA{A: 255}))

	img, format, err := decodeImage(data)

	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestDecodeImage_PalettedGIF(t *testing.T) {
	var buf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 120, 90), color.Palette{
		color.RGBA{R: 255, A: 255}, color.RGBA{G: 255, A: 255},
	})
	require.NoError(t, gif.Encode(&buf, pal, nil))

	img, format, err := decodeImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "gif", format)

	// Paletted input must survive the full flatten/resize/encode path.
	thumb := makeThumbnail(img, 100, 100)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 75, thumb.Bounds().Dy())
	_, err = encodeJPEG(thumb, 85)
	assert.NoError(t, err)
}

func TestDecodeImage_CorruptData(t *testing.T) {
	_, _, err := decodeImage([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestFlatten_CompositesAlphaOverWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	// Fully transparent everywhere.
	flat := flatten(src)

	c := flat.NRGBAAt(1, 1)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.G)
	assert.Equal(t, uint8(255), c.B)
	assert.Equal(t, uint8(255), c.A)
}

func TestEncodeJPEG_Deterministic(t *testing.T) {
	src := solidImage(300, 200, color.RGBA{R: 120, G: 80, B: 200, A: 255})
	thumb := makeThumbnail(src, 100, 100)

	first, err := encodeJPEG(thumb, 85)
	require.NoError(t, err)
	second, err := encodeJPEG(thumb, 85)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
