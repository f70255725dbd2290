package imageprocessor_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/imageprocessor"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDataURIRoundTrip(t *testing.T) {
	data := testPNG(t, 4, 4)
	uri := imageprocessor.EncodeDataURI("image/png", data)
	assert.Contains(t, uri, "data:image/png;base64,")

	mime, decoded, err := imageprocessor.DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, decoded)
}

func TestDecodeDataURIRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"no scheme", "image/png;base64,AAAA"},
		{"no comma", "data:image/png;base64"},
		{"not base64", "data:text/plain,hello"},
		{"bad payload", "data:image/png;base64,%%%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := imageprocessor.DecodeDataURI(tt.uri)
			assert.ErrorIs(t, err, imageprocessor.ErrInvalidDataURI)
		})
	}
}

func TestThumbnailKeepsAspectRatio(t *testing.T) {
	img, err := imageprocessor.Decode(testPNG(t, 400, 200), "image/png")
	require.NoError(t, err)

	thumb := imageprocessor.Thumbnail(img, 100)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())

	small := imageprocessor.Thumbnail(img, 1000)
	assert.Equal(t, img.Bounds(), small.Bounds())
}

func TestThumbnailJPEG(t *testing.T) {
	uri := imageprocessor.EncodeDataURI("image/png", testPNG(t, 300, 300))

	out, err := imageprocessor.ThumbnailJPEG(uri, 50)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestThumbnailWebPDataURI(t *testing.T) {
	uri := imageprocessor.EncodeDataURI("image/png", testPNG(t, 64, 32))

	out, err := imageprocessor.ThumbnailWebPDataURI(uri, 16)
	require.NoError(t, err)

	mime, data, err := imageprocessor.DecodeDataURI(out)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mime)

	img, err := imageprocessor.Decode(data, mime)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}
