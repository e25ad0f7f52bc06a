package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds gateway configuration loaded from files and environment variables.
type Config struct {
	Env      string         `mapstructure:"env"` // local, development, production
	HTTP     HTTPConfig     `mapstructure:"http"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	AllowedMethods  string        `mapstructure:"allowed_methods"`
	AllowedHeaders  string        `mapstructure:"allowed_headers"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// AuthConfig controls how bearer tokens issued by the backend are decoded.
type AuthConfig struct {
	JWTSecret                string        `mapstructure:"jwt_secret"` // empty: decode without verifying
	CacheTTL                 time.Duration `mapstructure:"cache_ttl"`
	AllowAnonymousCompletion bool          `mapstructure:"allow_anonymous_completion"`
}

// WorkflowConfig holds the survey wizard timings.
type WorkflowConfig struct {
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	ToastDuration time.Duration `mapstructure:"toast_duration"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
	RedirectPath  string        `mapstructure:"redirect_path"`
	DraftMaxAge   time.Duration `mapstructure:"draft_max_age"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Origins splits AllowedOrigins into its entries
func (h HTTPConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(h.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsProduction reports whether the gateway runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from config files, .env and environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env names kept from the previous deployment scripts
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("http.port", "PORT")
	_ = v.BindEnv("http.allowed_origins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("http.allowed_methods", "CORS_ALLOWED_METHODS")
	_ = v.BindEnv("http.allowed_headers", "CORS_ALLOWED_HEADERS")
	_ = v.BindEnv("backend.base_url", "BACKEND_URL")
	_ = v.BindEnv("redis.address", "REDIS_URI")
	_ = v.BindEnv("mongo.uri", "MONGO_URI")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.Redis.Address = strings.TrimPrefix(cfg.Redis.Address, "redis://")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.allowed_origins", "*")
	v.SetDefault("http.allowed_methods", "GET, POST, PUT, DELETE, OPTIONS")
	v.SetDefault("http.allowed_headers", "Content-Type, Authorization")
	v.SetDefault("http.shutdown_timeout", "30s")
	v.SetDefault("backend.base_url", "http://localhost:4000/api")
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "safehaven")
	v.SetDefault("auth.cache_ttl", "15m")
	v.SetDefault("auth.allow_anonymous_completion", true)
	v.SetDefault("workflow.session_ttl", "2h")
	v.SetDefault("workflow.toast_duration", "4s")
	v.SetDefault("workflow.redirect_delay", "3s")
	v.SetDefault("workflow.redirect_path", "/surveys")
	v.SetDefault("workflow.draft_max_age", "168h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the fields the gateway cannot start without.
func (c *Config) Validate() error {
	if !c.Backend.IsConfigured() {
		return fmt.Errorf("%w: backend.base_url is required", ErrInvalidConfig)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("%w: backend.timeout must be positive", ErrInvalidConfig)
	}
	if c.Redis.Address == "" {
		return fmt.Errorf("%w: redis.address is required", ErrInvalidConfig)
	}
	if c.Workflow.SessionTTL <= 0 || c.Workflow.ToastDuration <= 0 {
		return fmt.Errorf("%w: workflow durations must be positive", ErrInvalidConfig)
	}
	// Without a secret tokens are decoded but never verified
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required in production", ErrInvalidConfig)
	}
	return nil
}

func loadEnvFile() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}
