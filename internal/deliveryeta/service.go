package deliveryeta

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zlocal/deliveryeta-service/internal/cache"
	"github.com/zlocal/deliveryeta-service/internal/common"
	"github.com/zlocal/deliveryeta-service/internal/festival"
	"github.com/zlocal/deliveryeta-service/internal/geo"
	"github.com/zlocal/deliveryeta-service/internal/georesolve"
	"github.com/zlocal/deliveryeta-service/internal/googlemaps"
	"github.com/zlocal/deliveryeta-service/internal/history"
	"github.com/zlocal/deliveryeta-service/internal/mlscore"
	"github.com/zlocal/deliveryeta-service/internal/nominatim"
	"github.com/zlocal/deliveryeta-service/internal/openweather"
	"github.com/zlocal/deliveryeta-service/internal/predict"
	"github.com/zlocal/deliveryeta-service/internal/route"
	"github.com/zlocal/deliveryeta-service/internal/traffic"
	"github.com/zlocal/deliveryeta-service/internal/weather"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

const (
	maxDistanceKm = 20.0

	minConfidence = 0.6
	maxConfidence = 0.95
)

type WeatherSummary struct {
	Condition   string  `json:"condition"`
	Temperature float64 `json:"temperature"`
}

type ETAResponse struct {
	PredictedETA    float64        `json:"predicted_eta"`
	ProviderETA     float64        `json:"provider_eta"`
	DistanceKm      float64        `json:"distance_km"`
	Weather         WeatherSummary `json:"weather"`
	TrafficDensity  string         `json:"traffic_density"`
	IsFestival      bool           `json:"is_festival"`
	Confidence      float64        `json:"confidence"`
	RoutePolyline   string         `json:"route_polyline"`
	RestaurantLat   float64        `json:"restaurant_lat"`
	RestaurantLng   float64        `json:"restaurant_lng"`
	DeliveryLat     float64        `json:"delivery_lat"`
	DeliveryLng     float64        `json:"delivery_lng"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

type geoResolver interface {
	Resolve(ctx context.Context, address string) (*t.Coordinate, error)
}

type routeProvider interface {
	Route(ctx context.Context, origin, dest t.Coordinate) t.RouteResult
}

type weatherProvider interface {
	Weather(ctx context.Context, at t.Coordinate) t.WeatherResult
}

type etaPredictor interface {
	Predict(ctx context.Context, req t.DeliveryRequest, weather t.WeatherResult, density traffic.Density, distanceKm float64, isFestival bool) (float64, float64)
}

type Service struct {
	resolver  geoResolver
	routes    routeProvider
	weather   weatherProvider
	predictor etaPredictor
	store     history.Store

	modelConfigured bool
	now             func() time.Time

	Logger *zap.SugaredLogger
}

func New() *Service {
	s := &Service{now: time.Now}

	baseLogger, _ := zap.NewProduction()
	s.Logger = baseLogger.Sugar()

	var primary georesolve.Geocoder
	var directions route.Directions
	if key := os.Getenv("googlemaps_apikey"); key != "" {
		gm := googlemaps.New(
			googlemaps.ApiKeyOption(key),
			googlemaps.BaseUrlOption(os.Getenv("googlemaps_baseurl")),
		)
		primary = gm
		directions = gm
	} else {
		s.Logger.Warnw("googlemaps_apikey not set, geocoding and routing run in fallback mode")
	}

	secondary := nominatim.New(
		nominatim.BaseUrlOption(os.Getenv("nominatim_baseurl")),
		nominatim.UserAgentOption(os.Getenv("nominatim_useragent")),
	)

	s.resolver = georesolve.New(primary, secondary,
		cache.New[t.Coordinate](cache.DefaultCapacity, cache.DefaultTTL), s.Logger)
	s.routes = route.New(directions,
		cache.New[t.RouteResult](cache.DefaultCapacity, cache.DefaultTTL), s.Logger)

	var source weather.Source
	if key := os.Getenv("openweather_apikey"); key != "" {
		source = openweather.New(
			openweather.ApiKeyOption(key),
			openweather.BaseUrlOption(os.Getenv("openweather_baseurl")),
		)
	} else {
		s.Logger.Warnw("openweather_apikey not set, weather runs in fallback mode")
	}
	s.weather = weather.New(source,
		cache.New[t.WeatherResult](cache.DefaultCapacity, cache.DefaultTTL), s.Logger)

	var scorer predict.Scorer
	if baseUrl := os.Getenv("mlscore_baseurl"); baseUrl != "" {
		scorer = mlscore.New(mlscore.BaseUrlOption(baseUrl))
		s.modelConfigured = true
	} else {
		s.Logger.Warnw("mlscore_baseurl not set, predictions use the heuristic model")
	}
	s.predictor = predict.New(scorer, s.Logger)

	s.store = history.NopStore{}
	if addr := os.Getenv("redis_address"); addr != "" {
		s.store = history.NewRedisStore(redis.NewClient(&redis.Options{
			Addr: addr,
		}))
	}

	return s
}

// Estimate runs the full pipeline: validate, geocode both addresses,
// route, weather at the trip midpoint, traffic tier, prediction,
// confidence recalibration, recommendations.
func (s *Service) Estimate(ctx context.Context, req t.DeliveryRequest) (*ETAResponse, error) {
	req.VehicleType = strings.ToLower(strings.TrimSpace(req.VehicleType))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	trip, err := s.tripCoordinates(ctx, req.RestaurantAddress, req.DeliveryAddress)
	if err != nil {
		return nil, err
	}
	if !trip.From.Valid() || !trip.To.Valid() {
		return nil, common.CodeError{Code: 400, Msg: "Invalid pickup or delivery coordinates"}
	}

	routeRes := s.routes.Route(ctx, *trip.From, *trip.To)
	if routeRes.DistanceKm > maxDistanceKm {
		return nil, common.CodeError{
			Code: 400,
			Msg:  fmt.Sprintf("Distance exceeds hyperlocal limit (%.0f km)", maxDistanceKm),
		}
	}

	wx := s.weather.Weather(ctx, geo.Midpoint(*trip.From, *trip.To))
	density := traffic.Serving.Classify(routeRes.DistanceKm, routeRes.DurationMinutes)
	isFestival := festival.IsFestival(s.now())

	eta, confidence := s.predictor.Predict(ctx, req, wx, density, routeRes.DistanceKm, isFestival)

	// Recalibrate against the provider's own duration estimate. When the
	// provider reports no duration there is nothing to compare against,
	// so confidence pins to the floor.
	if routeRes.DurationMinutes > 0 {
		drift := math.Abs(eta - routeRes.DurationMinutes)
		confidence = clamp(confidence-drift/(routeRes.DistanceKm*6), minConfidence, maxConfidence)
	} else {
		confidence = minConfidence
	}

	var recommendations []string
	if wx.Condition == t.Stormy || wx.Condition == t.Fog {
		recommendations = append(recommendations, "Consider delaying delivery due to adverse weather conditions.")
	}
	if density == traffic.High || density == traffic.Jam {
		recommendations = append(recommendations, "Expect delays due to heavy traffic; consider alternative routes.")
	}

	resp := &ETAResponse{
		PredictedETA:    eta,
		ProviderETA:     routeRes.DurationMinutes,
		DistanceKm:      round2(routeRes.DistanceKm),
		Weather:         WeatherSummary{Condition: string(wx.Condition), Temperature: wx.TemperatureC},
		TrafficDensity:  string(density),
		IsFestival:      isFestival,
		Confidence:      round2(confidence),
		RoutePolyline:   routeRes.Polyline,
		RestaurantLat:   trip.From.Latitude,
		RestaurantLng:   trip.From.Longitude,
		DeliveryLat:     trip.To.Latitude,
		DeliveryLng:     trip.To.Longitude,
		Recommendations: recommendations,
	}

	s.record(ctx, req, resp)
	return resp, nil
}

func (s *Service) tripCoordinates(ctx context.Context, from, to string) (*t.Trip, error) {
	var fromCoord, toCoord *t.Coordinate
	g := new(errgroup.Group)

	g.Go(func() error {
		var err error
		fromCoord, err = s.resolver.Resolve(ctx, from)
		return err
	})
	g.Go(func() error {
		var err error
		toCoord, err = s.resolver.Resolve(ctx, to)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &t.Trip{
		From: fromCoord,
		To:   toCoord,
	}, nil
}

func (s *Service) record(ctx context.Context, req t.DeliveryRequest, resp *ETAResponse) {
	entry := history.Entry{
		RestaurantAddress: req.RestaurantAddress,
		DeliveryAddress:   req.DeliveryAddress,
		PredictedETA:      resp.PredictedETA,
		ProviderETA:       resp.ProviderETA,
		DistanceKm:        resp.DistanceKm,
		WeatherCondition:  resp.Weather.Condition,
		TrafficDensity:    resp.TrafficDensity,
		IsFestival:        resp.IsFestival,
		Confidence:        resp.Confidence,
		CreatedAt:         s.now(),
	}
	if err := s.store.Record(ctx, entry); err != nil {
		s.Logger.Warnw("failed to record estimate", "error", err)
	}
}

var validate = validator.New()

func validateRequest(req t.DeliveryRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return common.CodeError{Code: 400, Msg: validationMessage(verrs[0])}
	}
	return common.CodeError{Code: 400, Msg: "Invalid request"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "RestaurantAddress":
		return "Missing restaurant_address in request"
	case "DeliveryAddress":
		return "Missing delivery_address in request"
	case "DeliveryPersonAge":
		return "Delivery person age must be positive"
	case "DeliveryPersonRating":
		return "Delivery person rating must be between 0 and 5"
	case "VehicleType":
		return "Invalid vehicle type, must be one of bicycle, scooter, bike"
	case "VehicleCondition":
		return "Vehicle condition must be 0-3"
	case "MultipleDeliveries":
		return "Multiple deliveries must be non-negative"
	default:
		return fmt.Sprintf("Invalid value for %s", fe.Field())
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
