package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Scheduling.
	Timezone     string `mapstructure:"TIMEZONE"`
	Locale       string `mapstructure:"LOCALE"`
	ServicesFile string `mapstructure:"SERVICES_FILE"`

	// Google Calendar.
	GoogleCalendarID      string        `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleCredentialsFile string        `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	CalendarFailOpen      bool          `mapstructure:"CALENDAR_FAIL_OPEN"`
	CalendarTimeout       time.Duration `mapstructure:"CALENDAR_TIMEOUT"`

	// Gemini.
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel    string `mapstructure:"GEMINI_MODEL"`
	LLMMaxAttempts int    `mapstructure:"LLM_MAX_ATTEMPTS"`

	// Conversation sessions.
	SessionBackend string        `mapstructure:"SESSION_BACKEND"`
	SessionsFile   string        `mapstructure:"SESSIONS_FILE"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Telegram bot; an empty token disables it.
	TelegramBotToken    string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL      string        `mapstructure:"TELEGRAM_API_URL"`
	TelegramPollTimeout time.Duration `mapstructure:"TELEGRAM_POLL_TIMEOUT"`

	location *time.Location
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("LOCALE", "pt")
	v.SetDefault("SERVICES_FILE", "data/services.yaml")
	v.SetDefault("GOOGLE_CALENDAR_ID", "")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("CALENDAR_FAIL_OPEN", false)
	v.SetDefault("CALENDAR_TIMEOUT", "10s")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	v.SetDefault("LLM_MAX_ATTEMPTS", 3)
	v.SetDefault("SESSION_BACKEND", "file")
	v.SetDefault("SESSIONS_FILE", "data/sessions.json")
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_API_URL", "https://api.telegram.org")
	v.SetDefault("TELEGRAM_POLL_TIMEOUT", "30s")
}

// Load reads config.yaml from the working directory or ./config, then lets
// environment variables override it. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that must be usable before any component starts.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.LLMMaxAttempts <= 0 {
		return fmt.Errorf("LLM_MAX_ATTEMPTS must be positive, got %d", c.LLMMaxAttempts)
	}
	switch c.SessionBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q (want file or redis)", c.SessionBackend)
	}
	return nil
}

// Location returns the time zone every appointment is expressed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
