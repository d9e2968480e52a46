package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zlocal/deliveryeta-service/internal/common"
	t "github.com/zlocal/deliveryeta-service/internal/types"
)

type Place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type ClientOption func(*Client)

// Client talks to a Nominatim instance. Keyless, so it is always
// available as the secondary geocoder.
type Client struct {
	baseUrl   string
	userAgent string
}

func BaseUrlOption(baseUrl string) ClientOption {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

func UserAgentOption(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func New(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseUrl == "" {
		c.baseUrl = "https://nominatim.openstreetmap.org"
	}
	if c.userAgent == "" {
		c.userAgent = "delivery_eta"
	}
	return c
}

// GeoCode resolves a free-text address. A nil result with nil error means
// the provider recognized nothing for the query.
func (c *Client) GeoCode(ctx context.Context, address string) (*t.Coordinate, error) {
	req, err := url.Parse(fmt.Sprintf("%v/search", c.baseUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nominatim baseUrl %s: %w", c.baseUrl, err)
	}

	q := req.Query()
	q.Add("format", "json")
	q.Add("q", address)
	q.Add("limit", "1")
	req.RawQuery = q.Encode()

	ctxReq, _ := http.NewRequestWithContext(ctx, "GET", req.String(), nil)
	ctxReq.Header.Set("User-Agent", c.userAgent)
	resp, err := common.DoWithRetry(ctxReq, "nominatim")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading nominatim response body: %w", err)
	}

	var places []Place
	err = json.Unmarshal(body, &places)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling response from nominatim: %w", err)
	} else if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q from nominatim: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q from nominatim: %w", places[0].Lon, err)
	}
	return &t.Coordinate{Latitude: lat, Longitude: lon}, nil
}
