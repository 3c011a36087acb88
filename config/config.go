package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every externally tunable setting. The administrative
// identity is configuration, never a source literal.
type Config struct {
	Addr      string
	JWTSecret string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	AdminEmail string

	GeocoderBaseURL string
	GeocodeCacheTTL time.Duration
	DeviceTimeout   time.Duration

	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioPublicBase string
	MinioUseSSL     bool

	SubmitDailyLimit int
}

func Load() Config {
	return Config{
		Addr:      getenv("API_ADDR", ":8080"),
		JWTSecret: getenv("JWT_SECRET", ""),

		MongoURI: getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "citizenreport"),

		RedisAddr:     getenv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		AdminEmail: getenv("ADMIN_EMAIL", ""),

		GeocoderBaseURL: getenv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeCacheTTL: time.Duration(getenvInt("GEOCODE_CACHE_TTL_SECONDS", 86400)) * time.Second,
		DeviceTimeout:   time.Duration(getenvInt("DEVICE_LOCATION_TIMEOUT_SECONDS", 10)) * time.Second,

		MinioEndpoint:   getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getenv("MINIO_BUCKET", "issue-images"),
		MinioPublicBase: getenv("MINIO_PUBLIC_BASE", ""),
		MinioUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",

		SubmitDailyLimit: getenvInt("SUBMIT_DAILY_LIMIT", 20),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
