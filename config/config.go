// Package config loads application settings from a .env file and environment
// variables. Environment variables always take precedence over .env values.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// PostgreSQL connection. Either set DatabaseURL directly or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// SecretKey signs session cookies and is the installation-wide secret the
	// API token scheme trusts. Required.
	SecretKey string

	// BaseURL is the public origin used when building paste URLs.
	BaseURL string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	// Pagination
	PastesPerPage int
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "jjbin")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "jjbin")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":5000")
	v.SetDefault("BASE_URL", "http://localhost:5000")
	v.SetDefault("PASTES_PER_PAGE", 20)
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBUser:        v.GetString("DB_USER"),
		DBPass:        v.GetString("DB_PASS"),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		SecretKey:     v.GetString("SECRET_KEY"),
		BaseURL:       strings.TrimRight(v.GetString("BASE_URL"), "/"),
		Debug:         v.GetBool("DEBUG"),
		Port:          v.GetString("PORT"),
		TLSDomains:    splitTrimmed(v.GetString("TLS_DOMAINS")),
		PastesPerPage: v.GetInt("PASTES_PER_PAGE"),
	}

	cfg.validate()
	return cfg
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// SessionKey returns the cookie-signing key as a byte slice.
func (c *Config) SessionKey() []byte {
	return []byte(c.SecretKey)
}

func (c *Config) validate() {
	if c.DatabaseURL == "" && c.DBPass == "" {
		log.Fatal("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.SecretKey == "" {
		log.Fatal("config: SECRET_KEY must be set")
	}
}

func newViper() *viper.Viper {
	// Missing .env is fine, production uses real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
