package config

import (
	"os"
	"time"
)

// secrets and addresses that must not be compiled in

func RedisAddress() string {
	return envOrDefault("REDIS_ADDR", RedisAddr)
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

func AuthToken() string {
	return os.Getenv("API_AUTH_TOKEN")
}

func NoAuthBypass() bool {
	return os.Getenv("NO_AUTH_BYPASS") == "1"
}

func MongoTimeout() time.Duration {
	if raw := os.Getenv("MONGO_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return MongoServerSelectTimeout
}

type MinioSettings struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Minio returns false when no MINIO_ENDPOINT is configured and the mirror stays off.
func Minio() (MinioSettings, bool) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		return MinioSettings{}, false
	}
	return MinioSettings{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    envOrDefault("MINIO_BUCKET", MinioDefaultBucket),
		Region:    os.Getenv("MINIO_REGION"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "1",
	}, true
}
