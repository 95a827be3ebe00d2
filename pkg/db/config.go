package db

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LoadPostgresConfig reads DB_* variables, falling back to a local
// development database.
func LoadPostgresConfig() (PostgresConfig, error) {
	port := 5432
	if v := os.Getenv("DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return PostgresConfig{}, fmt.Errorf("DB_PORT: %w", err)
		}
		port = p
	}

	return PostgresConfig{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     port,
		User:     envOr("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   envOr("DB_NAME", "promotions"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
	}, nil
}

func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
