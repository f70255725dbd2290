package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Thumbnail sizes
const (
	ExportThumbnailSize = 600
	SmallThumbnailSize  = 200
)

// ErrInvalidDataURI is returned for strings that are not base64 data URIs.
var ErrInvalidDataURI = errors.New("invalid data URI")

// EncodeDataURI embeds data as a base64 data URI, the form photos are stored in.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its media type and payload.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, data, nil
}

// Decode reads an image of the given media type, honouring EXIF orientation
// for JPEGs. WebP goes through libwebp.
func Decode(data []byte, mime string) (image.Image, error) {
	if mime == "image/webp" {
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return nil, fmt.Errorf("error decoding WebP image: %w", err)
		}
		return img, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}
	return img, nil
}

// Thumbnail scales img down to fit a size x size box. Smaller images are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}
	return imaging.Fit(img, size, size, imaging.Lanczos)
}

// EncodeJPEG writes img as a JPEG.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// EncodeWebP writes img as a lossy WebP.
func EncodeWebP(w io.Writer, img image.Image, quality float32) error {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return fmt.Errorf("error creating encoder options: %w", err)
	}
	if err := webp.Encode(w, img, options); err != nil {
		return fmt.Errorf("error encoding WebP image: %w", err)
	}
	return nil
}

// ThumbnailJPEG decodes a photo data URI and returns a JPEG thumbnail of it.
// The PDF renderer only understands JPEG and PNG, so every photo goes through here.
func ThumbnailJPEG(dataURI string, size int) ([]byte, error) {
	mime, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data, mime)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, Thumbnail(img, size), 85); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ThumbnailWebPDataURI shrinks a photo data URI into a WebP data URI for the
// HTML document, which would otherwise carry every full-size capture.
func ThumbnailWebPDataURI(dataURI string, size int) (string, error) {
	mime, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	img, err := Decode(data, mime)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := EncodeWebP(&buf, Thumbnail(img, size), 80); err != nil {
		return "", err
	}
	return EncodeDataURI("image/webp", buf.Bytes()), nil
}
