package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zlocal/deliveryeta-service/internal/common"
	"github.com/zlocal/deliveryeta-service/internal/types"
)

type Response struct {
	Weather []Conditions `json:"weather"`
	Main    Main         `json:"main"`
	Wind    Wind         `json:"wind"`
}

type Conditions struct {
	Id          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

type Main struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
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
		panic("Missing apikey in openweather client")
	}
	if c.baseUrl == "" {
		c.baseUrl = "https://api.openweathermap.org/data/2.5/weather"
	}
	return c
}

// CurrentWeather fetches the current conditions at a coordinate in
// metric units.
func (c Client) CurrentWeather(ctx context.Context, at types.Coordinate) (*types.Observation, error) {
	req, err := url.Parse(c.baseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openweather baseUrl %s: %w", c.baseUrl, err)
	}

	q := req.Query()
	q.Add("appid", c.apiKey)
	q.Add("lat", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Add("lon", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Add("units", "metric")
	req.RawQuery = q.Encode()

	ctxReq, _ := http.NewRequestWithContext(ctx, "GET", req.String(), nil)
	resp, err := common.DoWithRetry(ctxReq, "openweather")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading openweather response body: %w", err)
	}

	var respObj Response
	err = json.Unmarshal(body, &respObj)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling response from openweather: %w", err)
	}
	if len(respObj.Weather) == 0 {
		return nil, fmt.Errorf("no weather conditions in openweather response")
	}

	return &types.Observation{
		Condition:   respObj.Weather[0].Main,
		TempC:       respObj.Main.Temp,
		HumidityPct: respObj.Main.Humidity,
		WindSpeed:   respObj.Wind.Speed,
	}, nil
}
