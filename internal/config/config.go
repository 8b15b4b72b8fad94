package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "your-super-secret-jwt-key-change-in-production"
	defaultSessionSecret = "default-secret-key-change-me"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Email     EmailConfig     `mapstructure:"email"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

type AppConfig struct {
	Environment   string `mapstructure:"environment"`
	FrontendURL   string `mapstructure:"frontend_url"`
	SessionSecret string `mapstructure:"session_secret"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the gorm driver ("postgres", "mysql" or "sqlite") and its DSN parts
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Load reads .env (if present), environment variables and defaults
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.frontend_url", "http://localhost:3000")
	v.SetDefault("app.session_secret", defaultSessionSecret)

	v.SetDefault("server.port", 5001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "trello")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "minitrello")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.expires_in", "168h")
	v.SetDefault("jwt.issuer", "minitrello-api")

	v.SetDefault("github.client_id", "")
	v.SetDefault("github.client_secret", "")
	v.SetDefault("github.callback_url", "http://localhost:5001/api/auth/github/callback")

	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.user", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "noreply@minitrello.com")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("rate_limit.requests", 5)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("openai.api_key", "")
}

func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"app.environment":    "APP_ENV",
		"app.frontend_url":   "FRONTEND_URL",
		"app.session_secret": "SESSION_SECRET",

		"server.port":          "PORT",
		"server.read_timeout":  "SERVER_READ_TIMEOUT",
		"server.write_timeout": "SERVER_WRITE_TIMEOUT",

		"database.driver":   "DB_DRIVER",
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USER",
		"database.password": "DB_PASSWORD",
		"database.name":     "DB_NAME",
		"database.ssl_mode": "DB_SSL_MODE",

		"redis.host":     "REDIS_HOST",
		"redis.port":     "REDIS_PORT",
		"redis.password": "REDIS_PASSWORD",
		"redis.db":       "REDIS_DB",

		"jwt.secret":     "JWT_SECRET",
		"jwt.expires_in": "JWT_EXPIRES_IN",
		"jwt.issuer":     "JWT_ISSUER",

		"github.client_id":     "GITHUB_CLIENT_ID",
		"github.client_secret": "GITHUB_CLIENT_SECRET",
		"github.callback_url":  "GITHUB_CALLBACK_URL",

		"email.host":     "EMAIL_HOST",
		"email.port":     "EMAIL_PORT",
		"email.user":     "EMAIL_USER",
		"email.password": "EMAIL_PASSWORD",
		"email.from":     "EMAIL_FROM",

		"logger.level":  "LOG_LEVEL",
		"logger.format": "LOG_FORMAT",

		"rate_limit.requests": "RATE_LIMIT_REQUESTS",
		"rate_limit.window":   "RATE_LIMIT_WINDOW",

		"openai.api_key": "OPENAI_API_KEY",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT secret must not use the default value in production")
	}

	if c.IsProduction() && (c.App.SessionSecret == "" || c.App.SessionSecret == defaultSessionSecret) {
		return fmt.Errorf("session secret must be set in production")
	}

	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("JWT expiry must be positive")
	}

	return nil
}

// IsProduction reports whether upstream error details must be hidden from clients
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GitHubEnabled reports whether OAuth credentials are configured
func (c *Config) GitHubEnabled() bool {
	return c.GitHub.ClientID != "" && c.GitHub.ClientSecret != ""
}

// EmailEnabled reports whether SMTP credentials are configured
func (c *Config) EmailEnabled() bool {
	return c.Email.User != "" && c.Email.Password != ""
}

// DSN returns the driver-specific connection string
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case "sqlite":
		return c.Name
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
}

// RedisAddr returns host:port, or "" when redis is not configured
func (c *RedisConfig) RedisAddr() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
