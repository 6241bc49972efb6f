package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	IndexerURL          string  // blockchain indexer REST base, e.g. https://indexer.example.com/api
	IndexerRPS          float64 // outbound indexer requests per second; 0 disables pacing
	StorageURL          string  // object store base, used for presigned GET URLs
	StorageSecretKey    string
	StorageBucket       string
	PresignExpiresIn    int // seconds
	FetchConcurrency    int // max in-flight per-listing branches; 0 = unbounded
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STORAGE_BUCKET", "properties")
	viper.SetDefault("PRESIGN_EXPIRES_IN", 3600)
	viper.SetDefault("INDEXER_RPS", 0)
	viper.SetDefault("FETCH_CONCURRENCY", 0)

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		DatabaseURL:         viper.GetString("DATABASE_URL"),
		RedisURL:            viper.GetString("REDIS_URL"),
		IndexerURL:          strings.TrimRight(viper.GetString("INDEXER_URL"), "/"),
		IndexerRPS:          viper.GetFloat64("INDEXER_RPS"),
		StorageURL:          strings.TrimRight(viper.GetString("STORAGE_URL"), "/"),
		StorageSecretKey:    viper.GetString("STORAGE_SECRET_KEY"),
		StorageBucket:       viper.GetString("STORAGE_BUCKET"),
		PresignExpiresIn:    viper.GetInt("PRESIGN_EXPIRES_IN"),
		FetchConcurrency:    viper.GetInt("FETCH_CONCURRENCY"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
