// Package mlscore is the HTTP client for the model-serving sidecar that
// hosts the trained regression model and its feature transform. The
// engine treats it as an opaque scoring function; when no baseurl is
// configured the engine never constructs this client and runs on the
// heuristic instead.
package mlscore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/zlocal/deliveryeta-service/internal/common"
	"github.com/zlocal/deliveryeta-service/internal/predict"
)

type scoreRequest struct {
	Features predict.FeatureVector `json:"features"`
}

type scoreResponse struct {
	ETAMinutes float64 `json:"eta_minutes"`
}

type ClientOption func(*Client)

type Client struct {
	baseUrl string
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

	if c.baseUrl == "" {
		panic("Missing baseUrl in mlscore client")
	}
	return c
}

// Score submits the feature vector and returns the model's ETA in
// minutes. Single attempt: the caller falls back to the heuristic on
// any failure, so retrying here only adds latency.
func (c *Client) Score(ctx context.Context, features predict.FeatureVector) (float64, error) {
	payload, err := json.Marshal(scoreRequest{Features: features})
	if err != nil {
		return 0, fmt.Errorf("error marshalling mlscore request: %w", err)
	}

	ctxReq, _ := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%v/score", c.baseUrl), bytes.NewReader(payload))
	ctxReq.Header.Set("Content-Type", "application/json")
	resp, err := common.Do(ctxReq, "mlscore")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("error reading mlscore response body: %w", err)
	}

	var respObj scoreResponse
	err = json.Unmarshal(body, &respObj)
	if err != nil {
		return 0, fmt.Errorf("error unmarshalling response from mlscore: %w", err)
	}
	return respObj.ETAMinutes, nil
}
