package geotag

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// ExifLocator reads the GPS position a camera embedded in the image.
type ExifLocator struct{}

func (ExifLocator) Locate(ctx context.Context, image []byte) (Position, error) {
	if len(image) == 0 {
		return Position{}, ErrUnavailable
	}
	x, err := exif.Decode(bytes.NewReader(image))
	if err != nil {
		// Most phone captures through a browser strip EXIF, this is not an error worth logging loudly
		log.Debugf("[Geotag] no EXIF data: %v", err)
		return Position{}, ErrUnavailable
	}
	lat, long, err := x.LatLong()
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Position{Latitude: lat, Longitude: long}, nil
}

// StaticLocator always answers with the same result. It stands in for a
// device fix supplied by the caller.
type StaticLocator struct {
	Position Position
	Err      error
}

func (s StaticLocator) Locate(ctx context.Context, image []byte) (Position, error) {
	if s.Err != nil {
		return Position{}, s.Err
	}
	return s.Position, nil
}

// ChainLocator tries each locator in order and returns the first position found.
type ChainLocator []Locator

func (c ChainLocator) Locate(ctx context.Context, image []byte) (Position, error) {
	var errs []error
	for _, loc := range c {
		if err := ctx.Err(); err != nil {
			return Position{}, err
		}
		pos, err := loc.Locate(ctx, image)
		if err == nil {
			return pos, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Position{}, ErrUnavailable
	}
	return Position{}, errors.Join(errs...)
}
