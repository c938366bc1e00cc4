package app

import (
	"github.com/draftmint/clausebind-backend/internal/platform/envutil"
)

type Config struct {
	Port                    string
	ServiceName             string
	Environment             string
	Version                 string
	SuggestBatchConcurrency int
	RedisEnabled            bool
}

func LoadConfig() Config {
	return Config{
		Port:                    envutil.String("PORT", "8080"),
		ServiceName:             envutil.String("SERVICE_NAME", "clausebind"),
		Environment:             envutil.String("ENVIRONMENT", "development"),
		Version:                 envutil.String("SERVICE_VERSION", "dev"),
		SuggestBatchConcurrency: envutil.Int("SUGGEST_BATCH_CONCURRENCY", 8),
		RedisEnabled:            envutil.Bool("REDIS_ENABLED", true),
	}
}
