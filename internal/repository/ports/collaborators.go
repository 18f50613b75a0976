package ports

import "context"

// Geocoder resolves a postal address to [lng, lat]. Implementations return
// (nil, nil) when the address cannot be resolved; callers fall back to a
// default location rather than failing the write.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

type Coordinates struct {
	Longitude float64
	Latitude  float64
}

type WeatherReport struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	City        string  `json:"city"`
}

type WeatherProvider interface {
	Current(ctx context.Context, lng, lat float64) (*WeatherReport, error)
}
