package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Scoring policies controlling where the pass threshold comes from.
// Deployments may pin a fixed platform-wide threshold or honor each
// assessment's own passing score.
const (
	ScoringPolicyFixed      = "fixed"
	ScoringPolicyAssessment = "assessment"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string

	CORSAllowOrigins []string

	ScoringPolicy string
	PassThreshold int

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	SignedURLTTL        time.Duration

	LayoutCacheTTL   time.Duration
	ProgressCacheTTL time.Duration

	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CBT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CBT API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("scoring.policy", ScoringPolicyFixed)
	v.SetDefault("scoring.pass_threshold", 80)
	v.SetDefault("cloudinary.folder", "cbt/lessons")
	v.SetDefault("signed_url_ttl", "15m")
	v.SetDefault("layout.cache_ttl", "10m")
	v.SetDefault("progress.cache_ttl", "5m")
	v.SetDefault("submit.rate_limit", 10)
	v.SetDefault("submit.rate_window", "1m")

	signedTTL, err := time.ParseDuration(v.GetString("signed_url_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid signed url ttl: %w", err)
	}

	layoutTTL, err := time.ParseDuration(v.GetString("layout.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid layout cache ttl: %w", err)
	}

	progressTTL, err := time.ParseDuration(v.GetString("progress.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid progress cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("submit.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submit rate window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		CORSAllowOrigins:    splitOrigins(v.GetString("cors.allow_origins")),
		ScoringPolicy:       strings.ToLower(v.GetString("scoring.policy")),
		PassThreshold:       v.GetInt("scoring.pass_threshold"),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		SignedURLTTL:        signedTTL,
		LayoutCacheTTL:      layoutTTL,
		ProgressCacheTTL:    progressTTL,
		SubmitRateLimit:     v.GetInt("submit.rate_limit"),
		SubmitRateWindow:    rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.ScoringPolicy {
	case ScoringPolicyFixed, ScoringPolicyAssessment:
	default:
		return Config{}, fmt.Errorf("unknown scoring policy %q", cfg.ScoringPolicy)
	}

	if cfg.PassThreshold <= 0 || cfg.PassThreshold > 100 {
		return Config{}, fmt.Errorf("pass threshold must be in (0,100], got %d", cfg.PassThreshold)
	}

	return cfg, nil
}
