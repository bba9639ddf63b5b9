package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default timeouts. Catalog resolution enumerates a whole profile and can
// take minutes, hence the much longer budget.
const (
	DefaultMediaTimeout = 30 * time.Second
	DefaultUserTimeout  = 300 * time.Second
	DefaultFetchTimeout = 120 * time.Second
)

// DefaultDownloadsDir is used when DOWNLOADS_DIR is not set.
const DefaultDownloadsDir = "downloads"

// Config holds all configuration values for the downloader
type Config struct {
	MediaAPI     string        // media extraction API base URL
	UserAPI      string        // user profile API base URL
	DownloadsDir string        // root directory for downloaded files
	MediaTimeout time.Duration // single-work resolution timeout
	UserTimeout  time.Duration // user catalog resolution timeout
	FetchTimeout time.Duration // single file download timeout

	// InsecureTLS disables certificate verification against the resolution
	// endpoints and the media origin. The resolution APIs are self-hosted
	// and commonly run with self-signed certificates. Scoped to the HTTP
	// clients built from this config, never set globally.
	InsecureTLS bool
}

// LoadConfig loads and validates the downloader configuration from
// environment variables. Returns a Config struct or an error if required
// values are missing.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Create and use environment validator
	validator := NewEnvValidator()

	// Validate required environment variables
	if err := validator.ValidateRequired(); err != nil {
		return nil, fmt.Errorf("environment validation failed: %w", err)
	}

	mediaAPI, userAPI := validator.GetEndpoints()

	downloadsDir := os.Getenv("DOWNLOADS_DIR")
	if downloadsDir == "" {
		downloadsDir = DefaultDownloadsDir
	}

	config := &Config{
		MediaAPI:     strings.TrimRight(mediaAPI, "/"),
		UserAPI:      strings.TrimRight(userAPI, "/"),
		DownloadsDir: downloadsDir,
		MediaTimeout: DefaultMediaTimeout,
		UserTimeout:  DefaultUserTimeout,
		FetchTimeout: DefaultFetchTimeout,
		InsecureTLS:  true,
	}

	return config, nil
}

// Validate performs additional validation on the loaded configuration
func (c *Config) Validate() error {
	if c.MediaAPI == "" {
		return fmt.Errorf("media API endpoint cannot be empty")
	}

	if c.UserAPI == "" {
		return fmt.Errorf("user API endpoint cannot be empty")
	}

	for _, endpoint := range []string{c.MediaAPI, c.UserAPI} {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("invalid API endpoint %q: %w", endpoint, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("API endpoint %q must be an absolute URL", endpoint)
		}
	}

	if c.DownloadsDir == "" {
		return fmt.Errorf("downloads directory cannot be empty")
	}

	return nil
}
