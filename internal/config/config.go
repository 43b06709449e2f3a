package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	// Clinic master data source: "pg" reads local replica tables, "http"
	// calls a remote directory service.
	DirectoryMode    string `mapstructure:"DIRECTORY_MODE"`
	DirectoryBaseURL string `mapstructure:"DIRECTORY_BASE_URL"`

	RedisURL          string `mapstructure:"REDIS_URL"`
	ReviewCacheTTLSec int    `mapstructure:"REVIEW_CACHE_TTL_SEC"`

	AuthIssuer   string `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL  string `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience string `mapstructure:"AUTH_AUDIENCE"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DIRECTORY_MODE", "pg")
	v.SetDefault("REVIEW_CACHE_TTL_SEC", 300)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DIRECTORY_MODE")
	v.BindEnv("DIRECTORY_BASE_URL")
	v.BindEnv("REDIS_URL")
	v.BindEnv("REVIEW_CACHE_TTL_SEC")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Production requires
// a real token issuer, and the HTTP directory mode requires a base URL.
func (c *Config) Validate() error {
	if c.IsProduction() && c.AuthIssuer == "" && c.AuthJWKSURL == "" {
		return fmt.Errorf("AUTH_ISSUER or AUTH_JWKS_URL is required in production")
	}
	switch c.DirectoryMode {
	case "pg":
	case "http":
		if c.DirectoryBaseURL == "" {
			return fmt.Errorf("DIRECTORY_BASE_URL is required when DIRECTORY_MODE is \"http\"")
		}
	default:
		return fmt.Errorf("DIRECTORY_MODE must be \"pg\" or \"http\", got %q", c.DirectoryMode)
	}
	if c.ReviewCacheTTLSec < 0 {
		return fmt.Errorf("REVIEW_CACHE_TTL_SEC must be >= 0")
	}
	return nil
}
