package weather

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zlocal/deliveryeta-service/internal/cache"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

type Source interface {
	CurrentWeather(ctx context.Context, at t.Coordinate) (*t.Observation, error)
}

// conditionMap buckets the provider's primary condition keyword into the
// four normalized categories the model was trained on.
var conditionMap = map[string]t.Condition{
	"clear":        t.Sunny,
	"clouds":       t.Cloudy,
	"rain":         t.Stormy,
	"snow":         t.Stormy,
	"thunderstorm": t.Stormy,
	"drizzle":      t.Stormy,
	"mist":         t.Fog,
	"haze":         t.Fog,
	"fog":          t.Fog,
}

// fallback is the benign default used without a configured source or
// when the source fails.
var fallback = t.WeatherResult{
	Condition:    t.Sunny,
	TemperatureC: 25,
	HumidityPct:  60,
	WindSpeed:    5,
}

// Provider returns normalized weather at a coordinate. It never fails:
// missing credential or a source error yields the benign default. The
// normalized result is cached, not the raw payload.
type Provider struct {
	source Source // nil when no credential is configured
	cache  *cache.Cache[t.WeatherResult]
	logger *zap.SugaredLogger
}

func New(source Source, c *cache.Cache[t.WeatherResult], logger *zap.SugaredLogger) *Provider {
	return &Provider{
		source: source,
		cache:  c,
		logger: logger,
	}
}

func (p *Provider) Weather(ctx context.Context, at t.Coordinate) t.WeatherResult {
	key := fmt.Sprintf("%.6f,%.6f", at.Latitude, at.Longitude)
	if res, ok := p.cache.Get(key); ok {
		return res
	}

	if p.source == nil {
		p.cache.Set(key, fallback)
		return fallback
	}

	obs, err := p.source.CurrentWeather(ctx, at)
	if err != nil || obs == nil {
		if err != nil {
			p.logger.Warnw("weather provider failed, using default conditions",
				"error", err)
		}
		p.cache.Set(key, fallback)
		return fallback
	}

	condition, ok := conditionMap[strings.ToLower(obs.Condition)]
	if !ok {
		condition = t.Sunny
	}
	res := t.WeatherResult{
		Condition:    condition,
		TemperatureC: obs.TempC,
		HumidityPct:  obs.HumidityPct,
		WindSpeed:    obs.WindSpeed,
	}
	p.cache.Set(key, res)
	return res
}
