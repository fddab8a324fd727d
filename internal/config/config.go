package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL            string
	FeedConnectTimeout time.Duration
	FeedReadTimeout    time.Duration // 0 disables stall detection
	ThresholdsFile     string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// OpenWeather current-conditions fetch, enabled by OPENWEATHER_API_KEY.
	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherCity    string
	WeatherLat     float64
	WeatherLon     float64
	WeatherTimeout time.Duration
}

// WeatherEnabled reports whether the startup conditions fetch is configured.
func (c *Config) WeatherEnabled() bool { return c.WeatherAPIKey != "" }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	connectTimeout, err := parsePositiveDuration("FEED_CONNECT_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	readTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_READ_TIMEOUT", "0s"))
	if err != nil || readTimeout < 0 {
		return nil, errors.New("invalid FEED_READ_TIMEOUT")
	}

	weatherTimeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("OPENWEATHER_LAT", "13.0827")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("OPENWEATHER_LON", "80.2707")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedURL:            sharedcfg.EnvOrDefault("FEED_URL", "http://127.0.0.1:5000/data"),
		FeedConnectTimeout: connectTimeout,
		FeedReadTimeout:    readTimeout,
		ThresholdsFile:     os.Getenv("THRESHOLDS_FILE"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "sensor-snapshots"),

		WeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		WeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		WeatherCity:    sharedcfg.EnvOrDefault("OPENWEATHER_CITY", "Chennai"),
		WeatherLat:     lat,
		WeatherLon:     lon,
		WeatherTimeout: weatherTimeout,
	}

	u, err := url.Parse(cfg.FeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid FEED_URL %q", cfg.FeedURL)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
