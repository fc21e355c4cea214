// Package config handles loading and validation of application configuration
// from layered config files and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/NomadCrew/cats-backend/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Host           string      `mapstructure:"HOST" yaml:"host"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	JwtSecretKey   string      `mapstructure:"JWT_SECRET_KEY" yaml:"jwt_secret_key"`
	// JwtTTLMinutes is the lifetime of tokens issued by /users/authenticate.
	JwtTTLMinutes           int `mapstructure:"JWT_TTL_MINUTES" yaml:"jwt_ttl_minutes"`
	ShutdownTimeoutSeconds  int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
	ReadHeaderTimeoutSecond int `mapstructure:"READ_HEADER_TIMEOUT_SECONDS" yaml:"read_header_timeout_seconds"`
}

// Address returns the listen address for the HTTP server.
func (s ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig holds MongoDB connection details.
type DatabaseConfig struct {
	// Enabled toggles every database backed route. Bound to USE_DB.
	Enabled                 bool   `mapstructure:"ENABLED" yaml:"enabled"`
	URI                     string `mapstructure:"URI" yaml:"uri"`
	Name                    string `mapstructure:"NAME" yaml:"name"`
	ConnectTimeoutSeconds   int    `mapstructure:"CONNECT_TIMEOUT_SECONDS" yaml:"connect_timeout_seconds"`
	OperationTimeoutSeconds int    `mapstructure:"OPERATION_TIMEOUT_SECONDS" yaml:"operation_timeout_seconds"`
	MaxPoolSize             uint64 `mapstructure:"MAX_POOL_SIZE" yaml:"max_pool_size"`
	MinPoolSize             uint64 `mapstructure:"MIN_POOL_SIZE" yaml:"min_pool_size"`
	ConnectAttempts         int    `mapstructure:"CONNECT_ATTEMPTS" yaml:"connect_attempts"`
}

// ConnectTimeout returns the timeout for establishing the initial connection.
func (d DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutSeconds) * time.Second
}

// OperationTimeout returns the per-operation timeout, zero when disabled.
func (d DatabaseConfig) OperationTimeout() time.Duration {
	return time.Duration(d.OperationTimeoutSeconds) * time.Second
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Maximum requests per window per authenticated user on the API routes
	RequestsPerMinute int `mapstructure:"REQUESTS_PER_MINUTE" yaml:"requests_per_minute"`
	// Maximum requests per window per client IP on register/authenticate
	AuthRequestsPerMinute int `mapstructure:"AUTH_REQUESTS_PER_MINUTE" yaml:"auth_requests_per_minute"`
	WindowSeconds         int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Window returns the rate limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"DATABASE" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	LogLevel  string          `mapstructure:"LOG_LEVEL" yaml:"log_level"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// Options controls where LoadConfig looks for files.
type Options struct {
	// Dir holds default.yaml, {RUN_MODE}.yaml and local.yaml. All optional.
	Dir string
	// EnvFile is a dotenv file loaded before the environment is read.
	EnvFile string
}

// DefaultOptions matches the repository layout.
func DefaultOptions() Options {
	return Options{Dir: "config", EnvFile: ".env"}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.HOST", "0.0.0.0")
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.JWT_TTL_MINUTES", 60*24)
	v.SetDefault("SERVER.SHUTDOWN_TIMEOUT_SECONDS", 15)
	v.SetDefault("SERVER.READ_HEADER_TIMEOUT_SECONDS", 10)
	v.SetDefault("DATABASE.ENABLED", true)
	v.SetDefault("DATABASE.URI", "mongodb://localhost:27017")
	v.SetDefault("DATABASE.NAME", "cats")
	v.SetDefault("DATABASE.CONNECT_TIMEOUT_SECONDS", 10)
	v.SetDefault("DATABASE.OPERATION_TIMEOUT_SECONDS", 5)
	v.SetDefault("DATABASE.MAX_POOL_SIZE", 20)
	v.SetDefault("DATABASE.MIN_POOL_SIZE", 0)
	v.SetDefault("DATABASE.CONNECT_ATTEMPTS", 3)
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("RATE_LIMIT.REQUESTS_PER_MINUTE", 120)
	v.SetDefault("RATE_LIMIT.AUTH_REQUESTS_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("LOG_LEVEL", "info")
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// normalizeToggles rewrites boolean keys so that yes/no and on/off are
// accepted alongside the forms strconv.ParseBool understands.
func normalizeToggles(v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		on, err := parseToggle(raw)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		v.Set(key, on)
	}
	return nil
}

func parseToggle(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", raw)
}

// mergeConfigFile merges path into v when it exists.
func mergeConfigFile(v *viper.Viper, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return false, fmt.Errorf("failed to merge %s: %w", path, err)
	}
	return true, nil
}

// Defaults returns the configuration with every default applied and
// nothing read from files or the environment.
func Defaults() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads configuration using the default file locations.
func LoadConfig() (*Config, error) {
	return Load(DefaultOptions())
}

// Load layers defaults, {Dir}/default.yaml, {Dir}/{RUN_MODE}.yaml,
// {Dir}/local.yaml and finally environment variables, then validates the
// result. RUN_MODE defaults to "development".
func Load(opts Options) (*Config, error) {
	log := logger.GetLogger()

	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", opts.EnvFile, err)
			}
		}
	}

	v := viper.New()
	setDefaults(v)

	runMode := os.Getenv("RUN_MODE")
	if runMode == "" {
		runMode = string(EnvDevelopment)
	}

	if opts.Dir != "" {
		for _, name := range []string{"default", runMode, "local"} {
			path := fmt.Sprintf("%s/%s.yaml", strings.TrimRight(opts.Dir, "/"), name)
			merged, err := mergeConfigFile(v, path)
			if err != nil {
				return nil, err
			}
			if merged {
				log.Debugw("Merged config file", "path", path)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.HOST", "SERVER_HOST"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.JWT_SECRET_KEY", "JWT_SECRET_KEY"},
		{"SERVER.JWT_TTL_MINUTES", "JWT_TTL_MINUTES"},
		// Database config
		{"DATABASE.ENABLED", "USE_DB"},
		{"DATABASE.URI", "MONGODB_URI"},
		{"DATABASE.NAME", "MONGODB_DATABASE"},
		{"DATABASE.OPERATION_TIMEOUT_SECONDS", "MONGODB_OPERATION_TIMEOUT_SECONDS"},
		// Redis config
		{"REDIS.ENABLED", "REDIS_ENABLED"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Rate limit config
		{"RATE_LIMIT.REQUESTS_PER_MINUTE", "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"RATE_LIMIT.AUTH_REQUESTS_PER_MINUTE", "RATE_LIMIT_AUTH_REQUESTS_PER_MINUTE"},
		{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
		{"LOG_LEVEL", "LOG_LEVEL"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}
	if err := normalizeToggles(v, "DATABASE.ENABLED", "REDIS.ENABLED", "REDIS.USE_TLS"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"run_mode", runMode,
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"db_enabled", cfg.Database.Enabled,
		"db_uri", logger.MaskConnectionString(cfg.Database.URI),
		"db_name", cfg.Database.Name,
		"redis_enabled", cfg.Redis.Enabled,
		"allowed_origins", cfg.Server.AllowedOrigins,
	)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if len(cfg.Server.JwtSecretKey) < minJWTLength {
		return fmt.Errorf("JWT secret key must be at least %d characters long", minJWTLength)
	}
	if cfg.Server.JwtTTLMinutes <= 0 {
		return fmt.Errorf("JWT ttl must be positive")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Database.Enabled {
		if cfg.Database.URI == "" {
			return fmt.Errorf("database uri is required when the database is enabled")
		}
		if !strings.HasPrefix(cfg.Database.URI, "mongodb://") && !strings.HasPrefix(cfg.Database.URI, "mongodb+srv://") {
			return fmt.Errorf("database uri must use the mongodb:// or mongodb+srv:// scheme")
		}
		if cfg.Database.Name == "" {
			return fmt.Errorf("database name is required when the database is enabled")
		}
		if cfg.Database.ConnectTimeoutSeconds <= 0 {
			return fmt.Errorf("database connect timeout must be positive")
		}
		if cfg.Database.OperationTimeoutSeconds < 0 {
			return fmt.Errorf("database operation timeout must not be negative")
		}
		if cfg.Database.ConnectAttempts <= 0 {
			return fmt.Errorf("database connect attempts must be positive")
		}
	} else {
		log.Warn("Database is disabled (USE_DB=false); database backed routes will not be registered")
	}

	if cfg.Redis.Enabled {
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if cfg.Redis.Password == "" && cfg.Redis.UseTLS {
			log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
		}
	}

	if cfg.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit requests per minute must be positive")
	}
	if cfg.RateLimit.AuthRequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit auth requests per minute must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
