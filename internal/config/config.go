// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	MongoURI            string `mapstructure:"MONGO_URI"`
	MongoDB             string `mapstructure:"MONGO_DB"`
	MongoTimeoutSeconds int    `mapstructure:"MONGO_TIMEOUT_SECONDS"`

	RedisURL                 string `mapstructure:"REDIS_URL"`
	RecommendCacheTTLSeconds int    `mapstructure:"RECOMMEND_CACHE_TTL_SECONDS"`

	TMDBAPIKey       string `mapstructure:"TMDB_API_KEY"`
	TMDBBaseURL      string `mapstructure:"TMDB_BASE_URL"`
	TMDBLanguage     string `mapstructure:"TMDB_LANGUAGE"`
	EnrichIntervalMS int    `mapstructure:"ENRICH_INTERVAL_MS"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Env = strings.ToLower(strings.TrimSpace(config.Env))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "5001")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "Panoram")
	viper.SetDefault("MONGO_TIMEOUT_SECONDS", 10)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("RECOMMEND_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("TMDB_API_KEY", "")
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_LANGUAGE", "es-ES")
	viper.SetDefault("ENRICH_INTERVAL_MS", 300)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.MongoDB == "" {
		return errors.New("MONGO_DB is required")
	}
	if c.EnrichIntervalMS < 0 {
		return errors.New("ENRICH_INTERVAL_MS must not be negative")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// MongoTimeout is the connect and ping deadline for the document store.
func (c *Config) MongoTimeout() time.Duration {
	if c.MongoTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.MongoTimeoutSeconds) * time.Second
}

// EnrichInterval is the minimum spacing between two outbound catalog API calls.
func (c *Config) EnrichInterval() time.Duration {
	return time.Duration(c.EnrichIntervalMS) * time.Millisecond
}

// RecommendCacheTTL is how long a cached recommendation list stays valid.
func (c *Config) RecommendCacheTTL() time.Duration {
	if c.RecommendCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.RecommendCacheTTLSeconds) * time.Second
}
