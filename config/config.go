package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, parsed once at startup.
type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	Environment    string `env:"GO_ENV" envDefault:"development"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`

	MongoURI    string `env:"MONGODB_URI,required,notEmpty"`
	MongoDBName string `env:"MONGO_DB_NAME" envDefault:"wardwatch"`

	RedisAddress  string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// OverdueThresholdHours is how long an unresolved issue may sit
	// before it counts as overdue.
	OverdueThresholdHours int `env:"OVERDUE_THRESHOLD_HOURS" envDefault:"72"`

	// AllowAnyRoleReport permits authority accounts to file issues too.
	// Default is citizen-only submission.
	AllowAnyRoleReport bool `env:"ALLOW_ANY_ROLE_REPORT" envDefault:"false"`

	// EmptyWardResolutionRate is the resolution percentage reported for a
	// ward with zero issues. Accepts 0 or 100.
	EmptyWardResolutionRate int `env:"EMPTY_WARD_RESOLUTION_RATE" envDefault:"0"`

	// DailyReportLimit caps issue submissions per user per day.
	DailyReportLimit int `env:"DAILY_REPORT_LIMIT" envDefault:"5"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
}

var cfg *Config

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if c.EmptyWardResolutionRate != 0 && c.EmptyWardResolutionRate != 100 {
		return nil, fmt.Errorf("EMPTY_WARD_RESOLUTION_RATE must be 0 or 100, got %d", c.EmptyWardResolutionRate)
	}
	cfg = c
	return c, nil
}

// Get returns the loaded configuration. Load must have been called.
func Get() *Config {
	if cfg == nil {
		panic("config.Load was not called")
	}
	return cfg
}

// OverdueThreshold returns the overdue cutoff as a duration.
func (c *Config) OverdueThreshold() time.Duration {
	return time.Duration(c.OverdueThresholdHours) * time.Hour
}
