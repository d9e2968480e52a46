package georesolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zlocal/deliveryeta-service/internal/cache"
	"github.com/zlocal/deliveryeta-service/internal/common"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

type fakeGeocoder struct {
	coord *t.Coordinate
	err   error
	calls int
}

func (f *fakeGeocoder) GeoCode(context.Context, string) (*t.Coordinate, error) {
	f.calls++
	return f.coord, f.err
}

func newCache() *cache.Cache[t.Coordinate] {
	return cache.New[t.Coordinate](10, time.Hour)
}

var bangalore = t.Coordinate{Latitude: 12.9758, Longitude: 77.6045}

func TestResolvePrimary(tt *testing.T) {
	primary := &fakeGeocoder{coord: &bangalore}
	secondary := &fakeGeocoder{}
	r := New(primary, secondary, newCache(), zap.NewNop().Sugar())

	coord, err := r.Resolve(context.Background(), "MG Road, Bangalore")
	require.NoError(tt, err)
	assert.Equal(tt, bangalore, *coord)
	assert.Equal(tt, 1, primary.calls)
	assert.Equal(tt, 0, secondary.calls)
}

func TestResolveFallsBackToSecondary(tt *testing.T) {
	tests := []struct {
		name    string
		primary *fakeGeocoder
	}{
		{"primary errors", &fakeGeocoder{err: errors.New("quota exceeded")}},
		{"primary empty", &fakeGeocoder{}},
		{"primary null island", &fakeGeocoder{coord: &t.Coordinate{Latitude: 0.001, Longitude: 0.002}}},
		{"primary out of range", &fakeGeocoder{coord: &t.Coordinate{Latitude: 123, Longitude: 45}}},
	}
	for _, tc := range tests {
		tt.Run(tc.name, func(tt *testing.T) {
			secondary := &fakeGeocoder{coord: &bangalore}
			r := New(tc.primary, secondary, newCache(), zap.NewNop().Sugar())

			coord, err := r.Resolve(context.Background(), "MG Road, Bangalore")
			require.NoError(tt, err)
			assert.Equal(tt, bangalore, *coord)
			assert.Equal(tt, 1, secondary.calls)
		})
	}
}

func TestResolveNilPrimary(tt *testing.T) {
	secondary := &fakeGeocoder{coord: &bangalore}
	r := New(nil, secondary, newCache(), zap.NewNop().Sugar())

	coord, err := r.Resolve(context.Background(), "MG Road, Bangalore")
	require.NoError(tt, err)
	assert.Equal(tt, bangalore, *coord)
}

func TestResolveBothExhausted(tt *testing.T) {
	primary := &fakeGeocoder{err: errors.New("down")}
	secondary := &fakeGeocoder{}
	r := New(primary, secondary, newCache(), zap.NewNop().Sugar())

	_, err := r.Resolve(context.Background(), "MG Road, Bangalore")
	var codeErr common.CodeError
	require.ErrorAs(tt, err, &codeErr)
	assert.Equal(tt, 400, codeErr.Code)
}

func TestResolveShortAddress(tt *testing.T) {
	primary := &fakeGeocoder{coord: &bangalore}
	r := New(primary, primary, newCache(), zap.NewNop().Sugar())

	for _, address := range []string{"", "   ", "abc", "  ab  "} {
		_, err := r.Resolve(context.Background(), address)
		var codeErr common.CodeError
		require.ErrorAs(tt, err, &codeErr, "address %q", address)
		assert.Equal(tt, 400, codeErr.Code)
	}
	assert.Equal(tt, 0, primary.calls)
}

func TestResolveCacheHitSuppressesProviderCall(tt *testing.T) {
	primary := &fakeGeocoder{coord: &bangalore}
	r := New(primary, &fakeGeocoder{}, newCache(), zap.NewNop().Sugar())

	first, err := r.Resolve(context.Background(), "MG Road, Bangalore")
	require.NoError(tt, err)

	// Same address, different casing: same cache entry, no second call.
	second, err := r.Resolve(context.Background(), "mg road, bangalore")
	require.NoError(tt, err)

	assert.Equal(tt, *first, *second)
	assert.Equal(tt, 1, primary.calls)
}
