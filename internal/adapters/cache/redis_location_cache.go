package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"transport-routing-service/internal/domain"
	"transport-routing-service/internal/platform/obs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLocationCache caches customer locations so that coordinate refreshes
// during geography-aware sequencing do not hit the customer store on every
// stop of every route.
type RedisLocationCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisLocationCache(client *redis.Client, ttl time.Duration) *RedisLocationCache {
	return &RedisLocationCache{Client: client, TTL: ttl}
}

type cachedLocation struct {
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	City     string     `json:"city"`
	AreaID   *uuid.UUID `json:"area_id,omitempty"`
	AreaName string     `json:"area_name,omitempty"`
}

func locationKey(customerID uuid.UUID) string {
	return "customer:location:" + customerID.String()
}

// Get returns the cached location and whether it was present.
func (c *RedisLocationCache) Get(ctx context.Context, customerID uuid.UUID) (_ domain.CustomerLocation, _ bool, err error) {
	defer obs.Time(ctx, "cache.location.Get")(&err)

	if c.Client == nil {
		return domain.CustomerLocation{}, false, errors.New("location cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, locationKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CustomerLocation{}, false, nil
	}
	if err != nil {
		return domain.CustomerLocation{}, false, fmt.Errorf("location cache: get %s: %w", customerID, err)
	}

	var entry cachedLocation
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry behaves like a miss; the next Put overwrites it.
		return domain.CustomerLocation{}, false, nil
	}
	return domain.CustomerLocation{
		Coords:   domain.Coordinates{Lat: entry.Lat, Lon: entry.Lon},
		City:     entry.City,
		AreaID:   entry.AreaID,
		AreaName: entry.AreaName,
	}, true, nil
}

// Put stores the location under the configured TTL.
func (c *RedisLocationCache) Put(ctx context.Context, customerID uuid.UUID, loc domain.CustomerLocation) (err error) {
	defer obs.Time(ctx, "cache.location.Put")(&err)

	if c.Client == nil {
		return errors.New("location cache: client is nil")
	}

	raw, err := json.Marshal(cachedLocation{
		Lat:      loc.Coords.Lat,
		Lon:      loc.Coords.Lon,
		City:     loc.City,
		AreaID:   loc.AreaID,
		AreaName: loc.AreaName,
	})
	if err != nil {
		return fmt.Errorf("location cache: marshal %s: %w", customerID, err)
	}

	if err := c.Client.Set(ctx, locationKey(customerID), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("location cache: put %s: %w", customerID, err)
	}
	return nil
}
