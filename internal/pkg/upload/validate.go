package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxRequestBody is the largest request body the gateway accepts.
const MaxRequestBody = 10 << 20

// MaxPhotoSize caps a single captured photo. Its data URI has to fit in one
// request body next to the rest of the record.
const MaxPhotoSize = 7 << 20

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

var (
	ErrUnsupportedExtension = errors.New("only JPG, JPEG, PNG, GIF, WEBP and BMP photos are supported")
	ErrScriptable           = errors.New("HTML, XML and SVG content is not allowed")
	ErrUnsupportedType      = errors.New("the file type is not supported")
	ErrTooLarge             = errors.New("photo exceeds the maximum size")
)

// ValidatePhotoBySniff checks the filename extension (when there is one) and
// the first bytes of a photo against the accepted image types. Camera
// captures often arrive without a name, so only the content is checked then.
// Returns the detected media type.
func ValidatePhotoBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" && !allowedExt[ext] {
		return "", ErrUnsupportedExtension
	}

	detected := http.DetectContentType(head)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}

	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrScriptable
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrScriptable
	}

	if allowedMime[detected] {
		return detected, nil
	}
	return "", ErrUnsupportedType
}

// ValidatePhoto checks size and content of a complete photo.
func ValidatePhoto(filename string, data []byte) (string, error) {
	if len(data) > MaxPhotoSize {
		return "", ErrTooLarge
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return ValidatePhotoBySniff(filename, head)
}
