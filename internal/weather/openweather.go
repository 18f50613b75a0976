package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

// OpenWeatherClient serves current conditions for a coordinate pair. Reports
// are cached per rounded coordinate so repeated detail views of the same
// place do not hammer the upstream API.
type OpenWeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker[*ports.WeatherReport]
}

func NewOpenWeatherClient(baseURL, apiKey string, ttl time.Duration) *OpenWeatherClient {
	settings := gobreaker.Settings{
		Name:    "openweather",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &OpenWeatherClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache.New(ttl, 2*ttl),
		breaker: gobreaker.NewCircuitBreaker[*ports.WeatherReport](settings),
	}
}

func (c *OpenWeatherClient) Current(ctx context.Context, lng, lat float64) (*ports.WeatherReport, error) {
	key := fmt.Sprintf("%.3f:%.3f", lat, lng)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*ports.WeatherReport), nil
	}

	report, err := c.breaker.Execute(func() (*ports.WeatherReport, error) {
		return c.fetch(ctx, lng, lat)
	})
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, report)
	return report, nil
}

func (c *OpenWeatherClient) fetch(ctx context.Context, lng, lat float64) (*ports.WeatherReport, error) {
	endpoint := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&units=metric&appid=%s",
		c.baseURL, lat, lng, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweather: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Name string `json:"name"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	condition := ""
	if len(payload.Weather) > 0 {
		condition = payload.Weather[0].Main
	}

	return &ports.WeatherReport{
		Temperature: payload.Main.Temp,
		Condition:   condition,
		City:        payload.Name,
	}, nil
}

var _ ports.WeatherProvider = (*OpenWeatherClient)(nil)
