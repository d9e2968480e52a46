// Package history persists served estimates for offline inspection and
// retraining. Persistence is best-effort: a store failure never fails
// the request that produced the estimate.
package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Entry struct {
	RestaurantAddress string    `json:"restaurant_address"`
	DeliveryAddress   string    `json:"delivery_address"`
	PredictedETA      float64   `json:"predicted_eta"`
	ProviderETA       float64   `json:"provider_eta"`
	DistanceKm        float64   `json:"distance_km"`
	WeatherCondition  string    `json:"weather_condition"`
	TrafficDensity    string    `json:"traffic_density"`
	IsFestival        bool      `json:"is_festival"`
	Confidence        float64   `json:"confidence"`
	CreatedAt         time.Time `json:"created_at"`
}

type Store interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, n int64) ([]Entry, error)
}

const (
	historyKey = "deliveryeta:history"
	maxEntries = 1000
)

// RedisStore keeps the most recent estimates in a capped Redis list,
// newest first.
type RedisStore struct {
	rc *redis.Client
}

func NewRedisStore(rc *redis.Client) *RedisStore {
	return &RedisStore{rc: rc}
}

func (s *RedisStore) Record(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := s.rc.TxPipeline()
	pipe.LPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, 0, maxEntries-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Recent(ctx context.Context, n int64) ([]Entry, error) {
	vals, err := s.rc.LRange(ctx, historyKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// NopStore discards everything. Used when no redis address is
// configured.
type NopStore struct{}

func (NopStore) Record(context.Context, Entry) error {
	return nil
}

func (NopStore) Recent(context.Context, int64) ([]Entry, error) {
	return nil, nil
}
