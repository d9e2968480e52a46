package predict

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/zlocal/deliveryeta-service/internal/traffic"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

const (
	MinETAMinutes = 1.0
	MaxETAMinutes = 60.0

	// Baseline courier pace, minutes per kilometre (20 km/h).
	minutesPerKm = 3.0

	heuristicConfidence = 0.6

	defaultHour = 12 // noon
	defaultDay  = 2  // Tuesday, Monday = 0
)

// FeatureVector is the fixed-order input to the trained model. Field
// names match the training columns.
type FeatureVector struct {
	DeliveryPersonAge    int     `json:"Delivery_person_Age"`
	DeliveryPersonRating float64 `json:"Delivery_person_Ratings"`
	WeatherConditions    string  `json:"Weather_conditions"`
	RoadTrafficDensity   string  `json:"Road_traffic_density"`
	VehicleCondition     int     `json:"Vehicle_condition"`
	TypeOfVehicle        string  `json:"Type_of_vehicle"`
	MultipleDeliveries   int     `json:"multiple_deliveries"`
	Festival             string  `json:"Festival"`
	CityArea             string  `json:"City_area"`
	DistanceKm           float64 `json:"distance_km"`
	HourOfDay            int     `json:"hour_of_day"`
	DayOfWeek            int     `json:"day_of_week"`
}

// Scorer is the opaque trained model: feature transform and regression
// in one call. Selected at startup, never swapped at runtime.
type Scorer interface {
	Score(ctx context.Context, features FeatureVector) (float64, error)
}

type Predictor struct {
	scorer Scorer // nil means heuristic-only for the process lifetime
	logger *zap.SugaredLogger
}

func New(scorer Scorer, logger *zap.SugaredLogger) *Predictor {
	return &Predictor{scorer: scorer, logger: logger}
}

var trafficFactor = map[traffic.Density]float64{
	traffic.Low:    1.0,
	traffic.Medium: 1.2,
	traffic.High:   1.4,
	traffic.Jam:    1.6,
}

var vehicleFactor = map[string]float64{
	"bicycle": 1.3,
	"scooter": 1.1,
	"bike":    1.0,
}

// Predict returns the ETA in minutes and a confidence score. The trained
// model is used when available; any scoring failure degrades to the
// heuristic with confidence 0.6, never to an error.
func (p *Predictor) Predict(ctx context.Context, req t.DeliveryRequest, weather t.WeatherResult, density traffic.Density, distanceKm float64, isFestival bool) (float64, float64) {
	if p.scorer == nil {
		return clampETA(Heuristic(req, weather, density, distanceKm, isFestival)), heuristicConfidence
	}

	prediction, err := p.scorer.Score(ctx, p.features(req, weather, density, distanceKm, isFestival))
	if err != nil {
		p.logger.Errorw("model scoring failed, falling back to heuristic",
			"error", err)
		return clampETA(Heuristic(req, weather, density, distanceKm, isFestival)), heuristicConfidence
	}

	confidence := 0.7
	if math.Abs(prediction-distanceKm*minutesPerKm) < 5 {
		confidence = 0.9
	}
	return clampETA(prediction), confidence
}

// Heuristic is the deterministic multiplicative ETA model: base travel
// time scaled by weather, traffic, festival, vehicle and courier
// factors.
func Heuristic(req t.DeliveryRequest, weather t.WeatherResult, density traffic.Density, distanceKm float64, isFestival bool) float64 {
	base := distanceKm * minutesPerKm

	weatherF := 1.0
	if weather.Condition == t.Stormy || weather.Condition == t.Fog {
		weatherF = 1.3
	}
	trafficF, ok := trafficFactor[density]
	if !ok {
		trafficF = 1.0
	}
	festivalF := 1.0
	if isFestival {
		festivalF = 1.3
	}
	vehicleF, ok := vehicleFactor[req.VehicleType]
	if !ok {
		vehicleF = 1.0
	}
	conditionF := 1.0 + float64(3-req.VehicleCondition)*0.1
	ageF := 1.0 + math.Max(0, float64(req.DeliveryPersonAge-30))*0.01
	ratingF := 1.0 - (req.DeliveryPersonRating-3)*0.05

	return base * weatherF * trafficF * festivalF * vehicleF * conditionF * ageF * ratingF
}

func (p *Predictor) features(req t.DeliveryRequest, weather t.WeatherResult, density traffic.Density, distanceKm float64, isFestival bool) FeatureVector {
	hour, day := p.temporal(req.OrderTime)

	festival := "no"
	if isFestival {
		festival = "yes"
	}
	return FeatureVector{
		DeliveryPersonAge:    req.DeliveryPersonAge,
		DeliveryPersonRating: req.DeliveryPersonRating,
		WeatherConditions:    string(weather.Condition),
		RoadTrafficDensity:   string(density),
		VehicleCondition:     req.VehicleCondition,
		TypeOfVehicle:        req.VehicleType,
		MultipleDeliveries:   req.MultipleDeliveries,
		Festival:             festival,
		CityArea:             "metropolitan",
		DistanceKm:           distanceKm,
		HourOfDay:            hour,
		DayOfWeek:            day,
	}
}

// temporal extracts hour-of-day and day-of-week from the order
// timestamp, defaulting to noon on a Tuesday when the timestamp is
// missing or malformed.
func (p *Predictor) temporal(orderTime string) (hour, day int) {
	hour, day = defaultHour, defaultDay
	if orderTime == "" {
		return
	}
	ts, err := time.Parse(time.RFC3339, orderTime)
	if err != nil {
		p.logger.Warnw("unparseable order_time, using defaults",
			"order_time", orderTime)
		return
	}
	hour = ts.Hour()
	// Monday = 0, matching the training data convention.
	day = (int(ts.Weekday()) + 6) % 7
	return
}

func clampETA(eta float64) float64 {
	return math.Min(math.Max(eta, MinETAMinutes), MaxETAMinutes)
}
