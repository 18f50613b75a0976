package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DatabaseURL         string
	JWTSecret           string
	SessionTTL          time.Duration
	GoogleAudience      string
	AllowOrigins        []string
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOBucketPlaces   string
	MinIOBucketBlogs    string
	MinIOBucketPackages string
	PublicBaseURL       string
	NominatimBaseURL    string
	OpenWeatherAPIKey   string
	OpenWeatherBaseURL  string
	WeatherCacheTTL     time.Duration
	ImageMaxBytes       int64
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	sessionTTL := 24 * time.Hour
	if v, err := time.ParseDuration(getenv("SESSION_TTL", "24h")); err == nil && v > 0 {
		sessionTTL = v
	}

	weatherTTL := 30 * time.Minute
	if v, err := time.ParseDuration(getenv("WEATHER_CACHE_TTL", "30m")); err == nil && v > 0 {
		weatherTTL = v
	}

	imageMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("IMAGE_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	return Config{
		Port:                getenv("PORT", "8080"),
		DatabaseURL:         must("DATABASE_URL"),
		JWTSecret:           must("JWT_SECRET"),
		SessionTTL:          sessionTTL,
		GoogleAudience:      getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:        splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		MinIOEndpoint:       must("MINIO_ENDPOINT"),
		MinIOAccessKey:      must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:      must("MINIO_SECRET_KEY"),
		MinIOUseSSL:         getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketPlaces:   getenv("MINIO_BUCKET_PLACES", "trm-places"),
		MinIOBucketBlogs:    getenv("MINIO_BUCKET_BLOGS", "trm-blogs"),
		MinIOBucketPackages: getenv("MINIO_BUCKET_PACKAGES", "trm-packages"),
		PublicBaseURL:       getenv("PUBLIC_BASE_URL", ""),
		NominatimBaseURL:    getenv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		OpenWeatherAPIKey:   getenv("OPENWEATHER_API_KEY", ""),
		OpenWeatherBaseURL:  getenv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		WeatherCacheTTL:     weatherTTL,
		ImageMaxBytes:       imageMax,
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
