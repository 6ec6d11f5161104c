package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type Config struct {
	ListenAddr    string
	DBPath        string
	StoragePath   string
	SeedEmail     string
	SeedPassword  string
	MaxAge        int
	MaxPhotoBytes int64
	LogLevel      string
}

func Load() *Config {
	return &Config{
		ListenAddr:    getEnv("DT_LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DT_DB_PATH", "/data/db/petfriends.db"),
		StoragePath:   getEnv("DT_STORAGE_PATH", "/data/photos"),
		SeedEmail:     getEnv("DT_SEED_EMAIL", ""),
		SeedPassword:  getEnv("DT_SEED_PASSWORD", ""),
		MaxAge:        getEnvInt("DT_MAX_AGE", 100),
		MaxPhotoBytes: int64(getEnvInt("DT_MAX_PHOTO_BYTES", 10<<20)),
		LogLevel:      getEnv("DT_LOG_LEVEL", "info"),
	}
}

// AddFlags registers command line overrides. Defaults are the values
// already loaded from the environment.
func (c *Config) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&c.ListenAddr, "listen-addr", c.ListenAddr, "Address the twin listens on.")
	f.StringVar(&c.DBPath, "db-path", c.DBPath, "SQLite database file.")
	f.StringVar(&c.StoragePath, "storage-path", c.StoragePath, "Directory for uploaded pet photos.")
	f.StringVar(&c.SeedEmail, "seed-email", c.SeedEmail, "Email of an account created at startup.")
	f.StringVar(&c.SeedPassword, "seed-password", c.SeedPassword, "Password of the seeded account.")
	f.IntVar(&c.MaxAge, "max-age", c.MaxAge, "Oldest pet age accepted.")
	f.Int64Var(&c.MaxPhotoBytes, "max-photo-bytes", c.MaxPhotoBytes, "Largest accepted photo upload.")
	f.StringVar(&c.LogLevel, "log-level", c.LogLevel, "One of debug, info, warn, error.")
}

// SlogLevel parses LogLevel the way slog does (debug, info, warn, error,
// optionally with an offset such as "info+2"), defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
