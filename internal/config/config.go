// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the route planning service.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required by the server.
	DatabaseURL string

	// RedisAddr is the address of the customer-location cache.
	// Empty disables caching.
	RedisAddr string

	// SeedPath is the JSON fixture loaded by cmd/dbtool.
	SeedPath string

	Planning Planning
}

// Planning holds the tunable constants of the routing algorithms.
// The defaults match the values the transport operation has run with
// historically; override via environment for other fleets.
type Planning struct {
	// AvgSpeedKmh converts travel distance to travel time. Must be positive.
	AvgSpeedKmh float64

	// AreaAdjacencyKm is the maximum distance between member customers of
	// two distinct areas for the areas to count as adjacent.
	AreaAdjacencyKm float64

	// MaxShipmentSplits caps how many shipments one oversized shipment may
	// be split into.
	MaxShipmentSplits int

	// DefaultLegKm is assumed for a travel leg when either endpoint has
	// unknown coordinates.
	DefaultLegKm float64

	// MinServiceTime is the floor for time spent at a stop.
	MinServiceTime time.Duration

	// PerDeliveryTime is the service time added per delivery at a stop.
	PerDeliveryTime time.Duration
}

// DefaultPlanning returns the historical planning constants.
func DefaultPlanning() Planning {
	return Planning{
		AvgSpeedKmh:       40,
		AreaAdjacencyKm:   50,
		MaxShipmentSplits: 10,
		DefaultLegKm:      5,
		MinServiceTime:    15 * time.Minute,
		PerDeliveryTime:   5 * time.Minute,
	}
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		SeedPath:  getEnv("SEED_PATH", "data/seeds/routes.json"),
		Planning:  DefaultPlanning(),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("required environment variable not set: DATABASE_URL")
	}

	var err error
	if cfg.Planning.AvgSpeedKmh, err = getFloat("AVG_SPEED_KMH", cfg.Planning.AvgSpeedKmh); err != nil {
		return Config{}, err
	}
	if cfg.Planning.AreaAdjacencyKm, err = getFloat("AREA_ADJACENCY_KM", cfg.Planning.AreaAdjacencyKm); err != nil {
		return Config{}, err
	}
	if cfg.Planning.DefaultLegKm, err = getFloat("DEFAULT_LEG_KM", cfg.Planning.DefaultLegKm); err != nil {
		return Config{}, err
	}
	if cfg.Planning.MaxShipmentSplits, err = getInt("MAX_SHIPMENT_SPLITS", cfg.Planning.MaxShipmentSplits); err != nil {
		return Config{}, err
	}
	if cfg.Planning.MinServiceTime, err = getMinutes("MIN_SERVICE_TIME_MIN", cfg.Planning.MinServiceTime); err != nil {
		return Config{}, err
	}
	if cfg.Planning.PerDeliveryTime, err = getMinutes("PER_DELIVERY_TIME_MIN", cfg.Planning.PerDeliveryTime); err != nil {
		return Config{}, err
	}

	if cfg.Planning.AvgSpeedKmh <= 0 {
		return Config{}, fmt.Errorf("AVG_SPEED_KMH must be positive, got %v", cfg.Planning.AvgSpeedKmh)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

// getMinutes reads a whole number of minutes as a duration.
func getMinutes(key string, fallback time.Duration) (time.Duration, error) {
	n, err := getInt(key, int(fallback/time.Minute))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("parse %s: minutes cannot be negative, got %d", key, n)
	}
	return time.Duration(n) * time.Minute, nil
}
