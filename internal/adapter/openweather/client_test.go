package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/observability"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"

	weatherBody = `{"name":"Chennai","main":{"temp":31.5,"humidity":70,"pressure":1008},"weather":[{"description":"haze"}]}`
	uviBody     = `{"lat":13.08,"lon":80.27,"value":9.2}`
)

var fixedTime = time.Date(2024, time.May, 2, 9, 30, 0, 0, time.UTC)

func testClient(baseURL string) *Client {
	c := NewClient(Config{
		APIKey:  testKey,
		BaseURL: baseURL,
		City:    "Chennai",
		Lat:     13.0827,
		Lon:     80.2707,
		Timeout: 5 * time.Second,
	}, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.clock = clockwork.NewFakeClockAt(fixedTime)
	return c
}

func weatherServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, testKey, q.Get("appid"))
		w.Header().Set(headerContentType, contentTypeJSON)
		switch r.URL.Path {
		case "/weather":
			assert.Equal(t, "Chennai", q.Get("q"))
			assert.Equal(t, "metric", q.Get("units"))
			_, _ = io.WriteString(w, weatherBody)
		case "/uvi":
			assert.Equal(t, "13.0827", q.Get("lat"))
			assert.Equal(t, "80.2707", q.Get("lon"))
			_, _ = io.WriteString(w, uviBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := weatherServer(t)
	c := testClient(srv.URL)

	cond, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Chennai", cond.City)
	assert.Equal(t, 31.5, cond.Temperature)
	assert.Equal(t, 70.0, cond.Humidity)
	assert.Equal(t, 1008.0, cond.Pressure)
	assert.Equal(t, "haze", cond.Description)
	assert.Equal(t, 9.2, cond.UVIndex)
	assert.Equal(t, fixedTime, cond.FetchedAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.WeatherRequests.WithLabelValues("weather", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.WeatherRequests.WithLabelValues("uvi", "success")))
}

func TestClient_Fetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.WeatherRequests.WithLabelValues("weather", "error")))
}

func TestClient_Fetch_UVIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/uvi" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, weatherBody)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uvi")
}

func TestClient_Fetch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = io.WriteString(w, "{")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode weather response")
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Fetch(context.Background())
	require.Error(t, err)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient(Config{APIKey: testKey}, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
