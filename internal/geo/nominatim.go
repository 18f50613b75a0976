package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

const userAgent = "trm-backend/1.0"

// NominatimClient resolves free-form addresses through the OpenStreetMap
// Nominatim search API.
type NominatimClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*ports.Coordinates]
}

func NewNominatimClient(baseURL string) *NominatimClient {
	settings := gobreaker.Settings{
		Name:    "nominatim",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &NominatimClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*ports.Coordinates](settings),
	}
}

func (c *NominatimClient) Geocode(ctx context.Context, address string) (*ports.Coordinates, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, nil
	}

	return c.breaker.Execute(func() (*ports.Coordinates, error) {
		return c.geocode(ctx, trimmed)
	})
}

func (c *NominatimClient) geocode(ctx context.Context, address string) (*ports.Coordinates, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim: unexpected status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim: parse lon: %w", err)
	}

	return &ports.Coordinates{Longitude: lon, Latitude: lat}, nil
}

var _ ports.Geocoder = (*NominatimClient)(nil)
