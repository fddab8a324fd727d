package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/observability"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Config holds the settings for a Client.
type Config struct {
	APIKey  string
	BaseURL string
	City    string
	Lat     float64
	Lon     float64
	Timeout time.Duration
}

// Client fetches current city conditions from the OpenWeatherMap API.
type Client struct {
	apiKey     string
	baseURL    string
	city       string
	lat, lon   float64
	httpClient *http.Client
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		city:    cfg.City,
		lat:     cfg.Lat,
		lon:     cfg.Lon,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch retrieves current weather for the configured city and the UV index
// for the configured coordinates. It makes one attempt at each and does not
// retry.
func (c *Client) Fetch(ctx context.Context) (domain.Conditions, error) {
	var w weatherResponse
	params := url.Values{
		"q":     {c.city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	if err := c.get(ctx, "weather", params, &w); err != nil {
		return domain.Conditions{}, err
	}

	var uv uviResponse
	params = url.Values{
		"lat":   {strconv.FormatFloat(c.lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(c.lon, 'f', -1, 64)},
		"appid": {c.apiKey},
	}
	if err := c.get(ctx, "uvi", params, &uv); err != nil {
		return domain.Conditions{}, err
	}

	cond := domain.Conditions{
		City:        c.city,
		Temperature: w.Main.Temp,
		Humidity:    w.Main.Humidity,
		Pressure:    w.Main.Pressure,
		UVIndex:     uv.Value,
		FetchedAt:   c.clock.Now().UTC(),
	}
	if w.Name != "" {
		cond.City = w.Name
	}
	if len(w.Weather) > 0 {
		cond.Description = w.Weather[0].Description
	}

	c.logger.Info("weather conditions fetched",
		"city", cond.City,
		"temperature", cond.Temperature,
		"uv_index", cond.UVIndex,
	)
	return cond, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.WeatherRequests.WithLabelValues(endpoint, outcome).Inc()
		c.metrics.WeatherAPIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("openweather API error: %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// OpenWeatherMap API response types.

type weatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type uviResponse struct {
	Value float64 `json:"value"`
}
