package georesolve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zlocal/deliveryeta-service/internal/cache"
	"github.com/zlocal/deliveryeta-service/internal/common"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

const minAddressLen = 5

type Geocoder interface {
	GeoCode(ctx context.Context, address string) (*t.Coordinate, error)
}

// Resolver turns a free-text address into a coordinate, trying the
// primary provider first and falling back to the secondary. Results are
// cached by lower-cased address; a hit never touches a provider.
type Resolver struct {
	primary   Geocoder // nil when no credential is configured
	secondary Geocoder
	cache     *cache.Cache[t.Coordinate]
	logger    *zap.SugaredLogger
}

func New(primary, secondary Geocoder, c *cache.Cache[t.Coordinate], logger *zap.SugaredLogger) *Resolver {
	return &Resolver{
		primary:   primary,
		secondary: secondary,
		cache:     c,
		logger:    logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, address string) (*t.Coordinate, error) {
	if len(strings.TrimSpace(address)) < minAddressLen {
		return nil, common.CodeError{Code: 400, Msg: fmt.Sprintf("Invalid address: %s", address)}
	}

	key := strings.ToLower(address)
	if coord, ok := r.cache.Get(key); ok {
		return &coord, nil
	}

	for _, g := range []Geocoder{r.primary, r.secondary} {
		if g == nil {
			continue
		}
		coord, err := g.GeoCode(ctx, address)
		if err != nil {
			r.logger.Warnw("geocoding attempt failed",
				"address", address, "error", err)
			continue
		}
		if coord == nil {
			r.logger.Warnw("geocoder returned no results",
				"address", address)
			continue
		}
		if !coord.Valid() {
			r.logger.Warnw("geocoder returned out-of-range coordinates",
				"address", address, "latitude", coord.Latitude, "longitude", coord.Longitude)
			continue
		}
		r.cache.Set(key, *coord)
		return coord, nil
	}

	return nil, common.CodeError{Code: 400, Msg: fmt.Sprintf("Failed to geocode address: %s", address)}
}
