package route

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zlocal/deliveryeta-service/internal/cache"
	"github.com/zlocal/deliveryeta-service/internal/geo"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

// Courier pace assumed by the great-circle fallback, minutes per
// kilometre (20 km/h).
const fallbackMinutesPerKm = 3.0

type Directions interface {
	Directions(ctx context.Context, origin, dest t.Coordinate) (*t.RouteResult, error)
}

// Provider returns a route between two coordinates. It never fails:
// without a configured directions client, or when the client errors, it
// synthesizes a haversine estimate. Every path populates the cache so
// repeated degraded calls do not re-invoke the network.
type Provider struct {
	client Directions // nil when no credential is configured
	cache  *cache.Cache[t.RouteResult]
	logger *zap.SugaredLogger
}

func New(client Directions, c *cache.Cache[t.RouteResult], logger *zap.SugaredLogger) *Provider {
	return &Provider{
		client: client,
		cache:  c,
		logger: logger,
	}
}

func (p *Provider) Route(ctx context.Context, origin, dest t.Coordinate) t.RouteResult {
	key := cacheKey(origin, dest)
	if res, ok := p.cache.Get(key); ok {
		return res
	}

	if p.client != nil {
		res, err := p.client.Directions(ctx, origin, dest)
		if err == nil && res != nil {
			p.cache.Set(key, *res)
			return *res
		}
		p.logger.Warnw("directions provider failed, falling back to haversine",
			"error", err)
	}

	distance := geo.Haversine(origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
	res := t.RouteResult{
		DistanceKm:      distance,
		DurationMinutes: distance * fallbackMinutesPerKm,
	}
	p.cache.Set(key, res)
	return res
}

// cacheKey is the ordered coordinate pair at provider precision.
func cacheKey(origin, dest t.Coordinate) string {
	return fmt.Sprintf("%.6f,%.6f:%.6f,%.6f",
		origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
}
