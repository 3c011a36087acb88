package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citizenreport/apperrors"
)

type fakeGeocoder struct {
	calls   int
	failFor int // fail the first N calls
	address string
}

func (g *fakeGeocoder) Lookup(_ context.Context, _ Coordinate) (string, error) {
	g.calls++
	if g.calls <= g.failFor {
		return "", errors.New("upstream unavailable")
	}
	return g.address, nil
}

type fakeLocator struct {
	pos Coordinate
	err error
}

func (l *fakeLocator) CurrentPosition(ctx context.Context) (Coordinate, error) {
	if l.err != nil {
		return Coordinate{}, l.err
	}
	return l.pos, nil
}

type blockingLocator struct{}

func (blockingLocator) CurrentPosition(ctx context.Context) (Coordinate, error) {
	<-ctx.Done()
	return Coordinate{}, ctx.Err()
}

func TestResolveFromDevice(t *testing.T) {
	r := NewResolver(nil, &fakeLocator{pos: Coordinate{Lat: 12.34, Lng: 56.78}})

	pos, err := r.ResolveFromDevice(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: 12.34, Lng: 56.78}, pos)
}

func TestResolveFromDeviceTimeout(t *testing.T) {
	r := NewResolver(nil, blockingLocator{})
	r.DeviceTimeout = 20 * time.Millisecond

	_, err := r.ResolveFromDevice(context.Background())

	var gerr *apperrors.GeolocationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, apperrors.GeoTimeout, gerr.Kind)
}

func TestResolveFromDevicePermissionDenied(t *testing.T) {
	denied := &apperrors.GeolocationError{Kind: apperrors.GeoPermissionDenied}
	r := NewResolver(nil, &fakeLocator{err: denied})

	_, err := r.ResolveFromDevice(context.Background())

	var gerr *apperrors.GeolocationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, apperrors.GeoPermissionDenied, gerr.Kind)

	// A manual map click still produces a usable coordinate afterwards.
	pin := r.ResolveFromClick(Coordinate{Lat: 12.34, Lng: 56.78})
	assert.Equal(t, Coordinate{Lat: 12.34, Lng: 56.78}, pin)
}

func TestResolveFromDeviceNoLocator(t *testing.T) {
	r := NewResolver(nil, nil)

	_, err := r.ResolveFromDevice(context.Background())

	var gerr *apperrors.GeolocationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, apperrors.GeoPositionUnavailable, gerr.Kind)
}

func TestReverseGeocodeRetriesOnce(t *testing.T) {
	g := &fakeGeocoder{failFor: 1, address: "1 Main St, Springfield"}
	r := NewResolver(g, nil)

	addr := r.ReverseGeocode(context.Background(), Coordinate{Lat: 1, Lng: 2})

	assert.Equal(t, "1 Main St, Springfield", addr.Display)
	assert.False(t, addr.Degraded)
	assert.Equal(t, 2, g.calls)
}

func TestReverseGeocodeFallsBackToCoordinates(t *testing.T) {
	g := &fakeGeocoder{failFor: 10}
	r := NewResolver(g, nil)

	addr := r.ReverseGeocode(context.Background(), Coordinate{Lat: 12.34, Lng: 56.78})

	assert.Equal(t, "12.340000, 56.780000", addr.Display)
	assert.True(t, addr.Degraded)
	assert.Equal(t, 2, g.calls, "failing lookup retries exactly once")
}

func TestReverseGeocodeUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	g := &fakeGeocoder{address: "1 Main St, Springfield"}
	r := NewResolver(g, nil)
	r.Cache = cache

	first := r.ReverseGeocode(context.Background(), Coordinate{Lat: 1, Lng: 2})
	second := r.ReverseGeocode(context.Background(), Coordinate{Lat: 1, Lng: 2})

	assert.Equal(t, first.Display, second.Display)
	assert.Equal(t, 1, g.calls, "second lookup should hit the cache")
}
