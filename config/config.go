// Package config loads application configuration from defaults, an
// optional config file and DAIRYBOOK_* environment variables, in that
// order of increasing precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	DB       DBConfig
	Auth     AuthConfig
	Log      LogConfig
	Translit TranslitConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name string
	Env  string // development, production
}

// HTTPConfig holds server settings.
type HTTPConfig struct {
	Port           int
	AllowedOrigins []string
}

// DBConfig holds the SQLite database location. Use ":memory:" for an
// in-memory database.
type DBConfig struct {
	Path string
}

// AuthConfig holds the login credential pair and token settings. The
// credentials are a single operator account; there is no user table.
type AuthConfig struct {
	Enabled  bool
	Username string
	Password string
	Secret   string
	TokenTTL time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TranslitConfig holds the text-helper endpoints and timeout.
type TranslitConfig struct {
	TransliterateURL string
	TranslateURL     string
	Timeout          time.Duration
}

// Load reads configuration. A missing config file is fine; defaults and
// environment variables cover everything.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "dairybook")
	v.SetDefault("app.env", "development")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("db.path", "dairybook.db")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "milk123")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("translit.transliterate_url", "https://inputtools.google.com/request")
	v.SetDefault("translit.translate_url", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translit.timeout", 5*time.Second)

	v.SetConfigName("dairybook")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("DAIRYBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		HTTP: HTTPConfig{
			Port:           v.GetInt("http.port"),
			AllowedOrigins: v.GetStringSlice("http.allowed_origins"),
		},
		DB: DBConfig{
			Path: v.GetString("db.path"),
		},
		Auth: AuthConfig{
			Enabled:  v.GetBool("auth.enabled"),
			Username: v.GetString("auth.username"),
			Password: v.GetString("auth.password"),
			Secret:   v.GetString("auth.secret"),
			TokenTTL: v.GetDuration("auth.token_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Translit: TranslitConfig{
			TransliterateURL: v.GetString("translit.transliterate_url"),
			TranslateURL:     v.GetString("translit.translate_url"),
			Timeout:          v.GetDuration("translit.timeout"),
		},
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
