//go:build acceptance

package acceptance

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings configures a suite run.
type Settings struct {
	Email          string
	Password       string
	BaseURL        string
	RequestTimeout time.Duration
	LogRequests    bool
}

// Twin reports whether the suite should start its own PetFriends twin.
func (s *Settings) Twin() bool {
	return s.BaseURL == ""
}

const (
	twinEmail    = "tester@petfriends.local"
	twinPassword = "tester-password"
)

// LoadSettings reads the environment, after merging in test/.env if present.
// A live target requires credentials; the twin falls back to its own account.
func LoadSettings() (*Settings, error) {
	loadEnvFile()

	s := &Settings{
		Email:          os.Getenv("PF_EMAIL"),
		Password:       os.Getenv("PF_PASSWORD"),
		BaseURL:        os.Getenv("PF_BASE_URL"),
		RequestTimeout: getDurationWithDefault("PF_REQUEST_TIMEOUT", 30*time.Second),
		LogRequests:    getBoolWithDefault("PF_LOG_REQUESTS", false),
	}

	if s.Twin() {
		if s.Email == "" {
			s.Email = twinEmail
		}
		if s.Password == "" {
			s.Password = twinPassword
		}
		return s, nil
	}

	if s.Email == "" || s.Password == "" {
		return nil, fmt.Errorf("PF_EMAIL and PF_PASSWORD are required when PF_BASE_URL is set")
	}
	return s, nil
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func loadEnvFile() {
	path, err := filepath.Abs("../.env")
	if err != nil {
		return
	}
	if _, err := os.Stat(path); err != nil {
		// CI sets the variables directly.
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", path, err)
	}
}
