package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// External persistence boundary (user directory, document database,
	// file bucket). All six are required; the service refuses to start
	// without them.
	BackendEndpoint         string `mapstructure:"BACKEND_ENDPOINT"`
	BackendProjectID        string `mapstructure:"BACKEND_PROJECT_ID"`
	BackendAPIKey           string `mapstructure:"BACKEND_API_KEY"`
	DatabaseID              string `mapstructure:"DATABASE_ID"`
	PatientCollectionID     string `mapstructure:"PATIENT_COLLECTION_ID"`
	AppointmentCollectionID string `mapstructure:"APPOINTMENT_COLLECTION_ID"`
	BucketID                string `mapstructure:"BUCKET_ID"`

	// Local audit store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	// Admin surface.
	AdminPasskey string `mapstructure:"ADMIN_PASSKEY"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("APPOINTMENT_COLLECTION_ID", "appointments")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "CORS_ORIGINS",
		"BACKEND_ENDPOINT", "BACKEND_PROJECT_ID", "BACKEND_API_KEY",
		"DATABASE_ID", "PATIENT_COLLECTION_ID", "APPOINTMENT_COLLECTION_ID", "BUCKET_ID",
		"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"ADMIN_PASSKEY", "JWT_SECRET",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		v.BindEnv(key)
	}

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

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
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

// Validate checks that the configuration is safe to run. Missing external
// service settings are a hard misconfiguration: every submission needs the
// user directory, the document database, and the file bucket.
func (c *Config) Validate() error {
	required := []struct {
		name, val string
	}{
		{"BACKEND_ENDPOINT", c.BackendEndpoint},
		{"BACKEND_PROJECT_ID", c.BackendProjectID},
		{"BACKEND_API_KEY", c.BackendAPIKey},
		{"DATABASE_ID", c.DatabaseID},
		{"PATIENT_COLLECTION_ID", c.PatientCollectionID},
		{"BUCKET_ID", c.BucketID},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if _, err := url.ParseRequestURI(c.BackendEndpoint); err != nil {
		return fmt.Errorf("BACKEND_ENDPOINT is not a valid URL: %w", err)
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required (audit store)")
	}

	if c.AdminPasskey != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSKEY is set")
	}
	if c.IsProduction() && c.AdminPasskey == "" {
		return fmt.Errorf("ADMIN_PASSKEY is required in production")
	}

	return nil
}
