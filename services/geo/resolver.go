// Package geo resolves coordinates for issue reports. Device capture and
// manual map selection both produce the same Coordinate value, so nothing
// downstream branches on how the location was obtained.
package geo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"citizenreport/apperrors"
)

// Coordinate is a (latitude, longitude) pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address is the display form of a coordinate. Degraded marks a fallback
// produced after the geocoding collaborator failed.
type Address struct {
	Display  string `json:"display"`
	Degraded bool   `json:"degraded"`
}

// DeviceLocator reports the current device position. Implementations must
// honor context cancellation.
type DeviceLocator interface {
	CurrentPosition(ctx context.Context) (Coordinate, error)
}

// Geocoder converts a coordinate into a human-readable address.
type Geocoder interface {
	Lookup(ctx context.Context, c Coordinate) (string, error)
}

type Resolver struct {
	Geocoder      Geocoder
	Locator       DeviceLocator
	Cache         *redis.Client // optional
	CacheTTL      time.Duration
	DeviceTimeout time.Duration
}

func NewResolver(geocoder Geocoder, locator DeviceLocator) *Resolver {
	return &Resolver{
		Geocoder:      geocoder,
		Locator:       locator,
		CacheTTL:      24 * time.Hour,
		DeviceTimeout: 10 * time.Second,
	}
}

// ResolveFromDevice requests the device's current position bound to the
// configured timeout. Failures are kind-tagged so the caller can render
// guidance specific to what went wrong; every kind is recoverable by a
// manual map click.
func (r *Resolver) ResolveFromDevice(ctx context.Context) (Coordinate, error) {
	if r.Locator == nil {
		return Coordinate{}, &apperrors.GeolocationError{Kind: apperrors.GeoPositionUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, r.DeviceTimeout)
	defer cancel()

	pos, err := r.Locator.CurrentPosition(ctx)
	if err == nil {
		return pos, nil
	}

	var gerr *apperrors.GeolocationError
	if errors.As(err, &gerr) {
		return Coordinate{}, gerr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Coordinate{}, &apperrors.GeolocationError{Kind: apperrors.GeoTimeout}
	}
	return Coordinate{}, &apperrors.GeolocationError{Kind: apperrors.GeoUnknown}
}

// ResolveFromClick accepts a manually pinned map point.
func (r *Resolver) ResolveFromClick(c Coordinate) Coordinate {
	return c
}

// ReverseGeocode returns a display address for a coordinate. The lookup is
// retried once on failure and cached; when both attempts fail the formatted
// coordinates are returned as a degraded address. Reverse geocoding is a
// convenience, so this never fails the caller.
func (r *Resolver) ReverseGeocode(ctx context.Context, c Coordinate) Address {
	key := fmt.Sprintf("geocode:%.6f,%.6f", c.Lat, c.Lng)

	if r.Cache != nil {
		if cached, err := r.Cache.Get(ctx, key).Result(); err == nil && cached != "" {
			return Address{Display: cached}
		}
	}

	display, err := r.lookupOnce(ctx, c)
	if err != nil {
		display, err = r.lookupOnce(ctx, c)
	}
	if err != nil {
		log.Printf("geo: reverse geocode (%.6f, %.6f) failed: %v", c.Lat, c.Lng, err)
		return Address{Display: FormatFallback(c), Degraded: true}
	}

	if r.Cache != nil {
		if err := r.Cache.Set(ctx, key, display, r.CacheTTL).Err(); err != nil {
			log.Printf("geo: caching address failed: %v", err)
		}
	}
	return Address{Display: display}
}

func (r *Resolver) lookupOnce(ctx context.Context, c Coordinate) (string, error) {
	if r.Geocoder == nil {
		return "", apperrors.Transient("geocode", errors.New("no geocoder configured"))
	}
	display, err := r.Geocoder.Lookup(ctx, c)
	if err != nil {
		return "", apperrors.Transient("geocode", err)
	}
	return display, nil
}

// FormatFallback renders a coordinate as the "lat, lng" display string used
// when reverse geocoding is unavailable.
func FormatFallback(c Coordinate) string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}
