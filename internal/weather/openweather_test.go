package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const samplePayload = `{
	"name": "Kathmandu",
	"main": {"temp": 21.4},
	"weather": [{"main": "Clouds", "description": "scattered clouds"}]
}`

func TestCurrentParsesReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("expected metric units, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := NewOpenWeatherClient(server.URL, "test-key", time.Minute)

	report, err := client.Current(context.Background(), 85.3, 27.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.City != "Kathmandu" {
		t.Errorf("unexpected city %q", report.City)
	}
	if report.Temperature != 21.4 {
		t.Errorf("unexpected temperature %v", report.Temperature)
	}
	if report.Condition != "Clouds" {
		t.Errorf("unexpected condition %q", report.Condition)
	}
}

func TestCurrentCachesByCoordinate(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := NewOpenWeatherClient(server.URL, "test-key", time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := client.Current(context.Background(), 85.3, 27.7); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected a single upstream call, got %d", got)
	}
}

func TestCurrentUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewOpenWeatherClient(server.URL, "bad-key", time.Minute)

	if _, err := client.Current(context.Background(), 85.3, 27.7); err == nil {
		t.Fatal("expected error")
	}
}
