package types

import "math"

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is inside geographic range and far
// enough from (0,0) to be a real geocoding result rather than a provider
// default ("null island").
func (c Coordinate) Valid() bool {
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return false
	}
	if math.Abs(c.Latitude) < 0.01 && math.Abs(c.Longitude) < 0.01 {
		return false
	}
	return true
}

type Trip struct {
	From *Coordinate
	To   *Coordinate
}

type RouteResult struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	Polyline        string  `json:"polyline"`
}

type Condition string

const (
	Sunny  Condition = "sunny"
	Cloudy Condition = "cloudy"
	Stormy Condition = "stormy"
	Fog    Condition = "fog"
)

type WeatherResult struct {
	Condition    Condition `json:"condition"`
	TemperatureC float64   `json:"temperature"`
	HumidityPct  float64   `json:"humidity"`
	WindSpeed    float64   `json:"wind_speed"`
}

// Observation is a raw weather reading as reported by the upstream
// provider, before normalization into a WeatherResult.
type Observation struct {
	Condition   string
	TempC       float64
	HumidityPct float64
	WindSpeed   float64
}

// DeliveryRequest carries the courier and order attributes for a single
// estimate. VehicleType is normalized to lower case before validation.
type DeliveryRequest struct {
	RestaurantAddress    string  `json:"restaurant_address" validate:"required"`
	DeliveryAddress      string  `json:"delivery_address" validate:"required"`
	DeliveryPersonAge    int     `json:"delivery_person_age" validate:"gt=0"`
	DeliveryPersonRating float64 `json:"delivery_person_rating" validate:"gte=0,lte=5"`
	VehicleType          string  `json:"vehicle_type" validate:"required,oneof=bicycle scooter bike"`
	VehicleCondition     int     `json:"vehicle_condition" validate:"gte=0,lte=3"`
	MultipleDeliveries   int     `json:"multiple_deliveries" validate:"gte=0"`
	OrderTime            string  `json:"order_time,omitempty"`
}
