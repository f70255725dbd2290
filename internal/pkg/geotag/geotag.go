package geotag

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
)

// DefaultTimeout bounds a location request during photo capture.
const DefaultTimeout = 5 * time.Second

// ErrUnavailable is returned when no position could be determined.
var ErrUnavailable = errors.New("location unavailable")

var gpsPattern = regexp.MustCompile(`^Lat: (-?\d+\.\d{6}), Long: (-?\d+\.\d{6})$`)

// Position is a WGS84 coordinate pair.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Locator determines where a photo was taken. The image may be nil when the
// locator does not need it (a device fix, for example).
type Locator interface {
	Locate(ctx context.Context, image []byte) (Position, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context, image []byte) (Position, error)

func (f LocatorFunc) Locate(ctx context.Context, image []byte) (Position, error) {
	return f(ctx, image)
}

// Acquire asks loc for a position and gives up after timeout. A non-positive
// timeout uses DefaultTimeout.
func Acquire(ctx context.Context, loc Locator, image []byte, timeout time.Duration) (Position, error) {
	if loc == nil {
		return Position{}, ErrUnavailable
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	done := make(chan result, 1)
	go func() {
		pos, err := loc.Locate(ctx, image)
		done <- result{pos, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, r.err)
		}
		return r.pos, nil
	case <-ctx.Done():
		return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}

// Tag returns the GPS string stored on a photo: the formatted position or
// the unavailable sentinel. It never fails.
func Tag(ctx context.Context, loc Locator, image []byte, timeout time.Duration) string {
	pos, err := Acquire(ctx, loc, image, timeout)
	if err != nil {
		return models.GPSUnavailable
	}
	return FormatGPS(pos)
}

// FormatGPS renders a position the way it is stored and printed.
func FormatGPS(pos Position) string {
	return fmt.Sprintf("Lat: %.6f, Long: %.6f", pos.Latitude, pos.Longitude)
}

// ParseGPS reads a string produced by FormatGPS.
func ParseGPS(s string) (Position, error) {
	m := gpsPattern.FindStringSubmatch(s)
	if m == nil {
		return Position{}, fmt.Errorf("not a GPS string: %q", s)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Position{}, err
	}
	long, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Position{}, err
	}
	return Position{Latitude: lat, Longitude: long}, nil
}

// IsValidGPS reports whether s is a formatted position (not the sentinel).
func IsValidGPS(s string) bool {
	return gpsPattern.MatchString(s)
}
