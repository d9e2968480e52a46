package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/zlocal/deliveryeta-service/internal/common"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

type GeocodeResponse struct {
	Status  string          `json:"status"`
	Results []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type DirectionsResponse struct {
	Status string  `json:"status"`
	Routes []Route `json:"routes"`
}

type Route struct {
	Legs             []Leg `json:"legs"`
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
}

type Leg struct {
	Distance          Value `json:"distance"`
	Duration          Value `json:"duration"`
	DurationInTraffic Value `json:"duration_in_traffic"`
}

type Value struct {
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

type ClientOption func(*Client)

type Client struct {
	apiKey  string
	baseUrl string
}

func ApiKeyOption(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

func New(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		panic("Missing apikey in googlemaps client")
	}
	if c.baseUrl == "" {
		c.baseUrl = "https://maps.googleapis.com/maps/api"
	}
	return c
}

// GeoCode resolves a free-text address. A nil result with nil error means
// the provider recognized nothing for the query.
func (c *Client) GeoCode(ctx context.Context, address string) (*t.Coordinate, error) {
	req, err := url.Parse(fmt.Sprintf("%v/geocode/json", c.baseUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse googlemaps baseUrl %s: %w", c.baseUrl, err)
	}

	q := req.Query()
	q.Add("key", c.apiKey)
	q.Add("address", address)
	req.RawQuery = q.Encode()

	ctxReq, _ := http.NewRequestWithContext(ctx, "GET", req.String(), nil)
	resp, err := common.DoWithRetry(ctxReq, "googlemaps")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading googlemaps response body: %w", err)
	}

	var respObj GeocodeResponse
	err = json.Unmarshal(body, &respObj)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling response from googlemaps: %w", err)
	} else if len(respObj.Results) == 0 {
		return nil, nil
	}

	loc := respObj.Results[0].Geometry.Location
	return &t.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

// Directions fetches a traffic-aware driving route between two points.
func (c *Client) Directions(ctx context.Context, origin, dest t.Coordinate) (*t.RouteResult, error) {
	req, err := url.Parse(fmt.Sprintf("%v/directions/json", c.baseUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse googlemaps baseUrl %s: %w", c.baseUrl, err)
	}

	q := req.Query()
	q.Add("key", c.apiKey)
	q.Add("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	q.Add("destination", fmt.Sprintf("%f,%f", dest.Latitude, dest.Longitude))
	q.Add("mode", "driving")
	q.Add("departure_time", "now")
	q.Add("traffic_model", "best_guess")
	req.RawQuery = q.Encode()

	ctxReq, _ := http.NewRequestWithContext(ctx, "GET", req.String(), nil)
	resp, err := common.DoWithRetry(ctxReq, "googlemaps")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading googlemaps response body: %w", err)
	}

	var respObj DirectionsResponse
	err = json.Unmarshal(body, &respObj)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling response from googlemaps: %w", err)
	}
	if len(respObj.Routes) == 0 || len(respObj.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no directions found (status %v)", respObj.Status)
	}

	leg := respObj.Routes[0].Legs[0]
	duration := leg.DurationInTraffic.Value
	if duration == 0 {
		duration = leg.Duration.Value
	}
	return &t.RouteResult{
		DistanceKm:      leg.Distance.Value / 1000,
		DurationMinutes: duration / 60,
		Polyline:        respObj.Routes[0].OverviewPolyline.Points,
	}, nil
}
