package geo

import (
	"context"
	"errors"
	"time"

	"github.com/alexivanou/crwd-api/internal/model"
)

// DefaultLocateTimeout bounds a single position lookup
const DefaultLocateTimeout = 10 * time.Second

// Position lookup failures. Callers treat all of them the same way.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("location request timed out")
)

// Locator produces the caller's current position
type Locator interface {
	Locate(ctx context.Context) (model.GeoPoint, error)
}

// LocatorFunc adapts a function to Locator
type LocatorFunc func(ctx context.Context) (model.GeoPoint, error)

// Locate calls f
func (f LocatorFunc) Locate(ctx context.Context) (model.GeoPoint, error) {
	return f(ctx)
}

// StaticLocator always returns the same position
type StaticLocator model.GeoPoint

// Locate returns the fixed point
func (s StaticLocator) Locate(context.Context) (model.GeoPoint, error) {
	return model.GeoPoint(s), nil
}

// FailingLocator reports a position failure, e.g. one the client already saw
type FailingLocator struct{ Err error }

// Locate returns the configured error
func (f FailingLocator) Locate(context.Context) (model.GeoPoint, error) {
	return model.GeoPoint{}, f.Err
}

// ParseLocationError maps a client-reported reason to one of the lookup failures
func ParseLocationError(reason string) error {
	switch reason {
	case "denied", "permission_denied":
		return ErrPermissionDenied
	case "timeout":
		return ErrTimeout
	default:
		return ErrPositionUnavailable
	}
}

// Resolution is the outcome of ResolveOrigin
type Resolution struct {
	Origin   model.GeoPoint
	Fallback bool
	// Err is the lookup failure that forced the fallback, if any
	Err error
}

// Prompt is the user-facing hint shown when the fallback origin was used
func (r Resolution) Prompt() string {
	if !r.Fallback {
		return ""
	}
	switch {
	case errors.Is(r.Err, ErrPermissionDenied):
		return "Location access is off. Enable it to see bars near you."
	case errors.Is(r.Err, ErrTimeout):
		return "Finding your location took too long. Showing the default city."
	default:
		return "Your location is unavailable. Showing the default city."
	}
}

// ResolveOrigin makes one lookup attempt bounded by timeout and falls back
// to the given origin on any failure. It never returns an error.
func ResolveOrigin(ctx context.Context, locator Locator, fallback model.GeoPoint, timeout time.Duration) Resolution {
	if locator == nil {
		return Resolution{Origin: fallback, Fallback: true, Err: ErrPositionUnavailable}
	}
	if timeout <= 0 {
		timeout = DefaultLocateTimeout
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	point, err := locator.Locate(lookupCtx)
	if err == nil && !ValidCoordinate(point) {
		err = ErrPositionUnavailable
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrPositionUnavailable), errors.Is(err, ErrTimeout):
		case errors.Is(err, context.DeadlineExceeded):
			err = ErrTimeout
		default:
			err = errors.Join(ErrPositionUnavailable, err)
		}
		return Resolution{Origin: fallback, Fallback: true, Err: err}
	}
	return Resolution{Origin: point}
}
