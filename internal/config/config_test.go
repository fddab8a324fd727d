package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker  = "localhost:9092"
	testWeatherKey = "ow-test-key"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000/data", cfg.FeedURL)
	assert.Equal(t, 5*time.Second, cfg.FeedConnectTimeout)
	assert.Zero(t, cfg.FeedReadTimeout)
	assert.Empty(t, cfg.ThresholdsFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "sensor-snapshots", cfg.KafkaTopic)
	assert.False(t, cfg.WeatherEnabled())
	assert.Equal(t, "Chennai", cfg.WeatherCity)
	assert.Equal(t, 13.0827, cfg.WeatherLat)
	assert.Equal(t, 80.2707, cfg.WeatherLon)
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FEED_URL", "https://feed.example.com/stream")
	t.Setenv("FEED_CONNECT_TIMEOUT", "2s")
	t.Setenv("FEED_READ_TIMEOUT", "30s")
	t.Setenv("THRESHOLDS_FILE", "/etc/sensor/thresholds.yaml")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("OPENWEATHER_API_KEY", testWeatherKey)
	t.Setenv("OPENWEATHER_CITY", "Madurai")
	t.Setenv("OPENWEATHER_LAT", "9.9252")
	t.Setenv("OPENWEATHER_LON", "78.1198")
	t.Setenv("OPENWEATHER_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://feed.example.com/stream", cfg.FeedURL)
	assert.Equal(t, 2*time.Second, cfg.FeedConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.FeedReadTimeout)
	assert.Equal(t, "/etc/sensor/thresholds.yaml", cfg.ThresholdsFile)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.True(t, cfg.WeatherEnabled())
	assert.Equal(t, testWeatherKey, cfg.WeatherAPIKey)
	assert.Equal(t, "Madurai", cfg.WeatherCity)
	assert.Equal(t, 9.9252, cfg.WeatherLat)
	assert.Equal(t, 78.1198, cfg.WeatherLon)
	assert.Equal(t, 10*time.Second, cfg.WeatherTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"FEED_CONNECT_TIMEOUT", "0s", "FEED_CONNECT_TIMEOUT"},
		{"FEED_CONNECT_TIMEOUT", "soon", "FEED_CONNECT_TIMEOUT"},
		{"FEED_READ_TIMEOUT", "-1s", "FEED_READ_TIMEOUT"},
		{"FEED_READ_TIMEOUT", "later", "FEED_READ_TIMEOUT"},
		{"OPENWEATHER_TIMEOUT", "bad", "OPENWEATHER_TIMEOUT"},
		{"OPENWEATHER_LAT", "north", "OPENWEATHER_LAT"},
		{"OPENWEATHER_LON", "east", "OPENWEATHER_LON"},
		{"FEED_URL", "ftp://feed.example.com", "FEED_URL"},
		{"FEED_URL", "not a url", "FEED_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_KafkaDisabledUnlessTrue(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "yes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
