package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Backend selection
	DataBackend string

	// Azure Table Storage
	TableServiceURL   string
	TransactionsTable string

	// SQLite
	SQLiteDBPath string

	// CSV import pipeline
	BlobServiceURL  string
	ImportContainer string
	QueueServiceURL string
	ImportQueue     string

	// Identity
	AuthMode          string
	FirebaseProjectID string
	AuthCertsURL      string
	AuthHMACSecret    string

	// Email notifications
	CommunicationServicesEndpoint string
	SenderEmail                   string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnv("FUNCTIONS_CUSTOMHANDLER_PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataBackend: getEnv("DATA_BACKEND", "tables"),

		TableServiceURL:   getEnv("TABLE_SERVICE_URL", ""),
		TransactionsTable: getEnv("TRANSACTIONS_TABLE", "transactions"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/money.db"),

		BlobServiceURL:  getEnv("BLOB_SERVICE_URL", ""),
		ImportContainer: getEnv("IMPORT_CONTAINER", "imports"),
		QueueServiceURL: getEnv("QUEUE_SERVICE_URL", ""),
		ImportQueue:     getEnv("IMPORT_QUEUE", "import-queue"),

		AuthMode:          getEnv("AUTH_MODE", "firebase"),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		AuthCertsURL:      getEnv("AUTH_CERTS_URL", ""),
		AuthHMACSecret:    getEnv("AUTH_HMAC_SECRET", ""),

		CommunicationServicesEndpoint: getEnv("COMMUNICATION_SERVICES_ENDPOINT", ""),
		SenderEmail:                   getEnv("SENDER_EMAIL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	return cfg
}

// ImportEnabled reports whether both blob and queue storage are configured.
func (c *Config) ImportEnabled() bool {
	return c.BlobServiceURL != "" && c.QueueServiceURL != ""
}

// EmailEnabled reports whether import reports can be mailed.
func (c *Config) EmailEnabled() bool {
	return c.CommunicationServicesEndpoint != "" && c.SenderEmail != ""
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	validBackends := []string{"tables", "sqlite", "memory"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "tables":
		if c.TableServiceURL == "" {
			errors = append(errors, "TABLE_SERVICE_URL is required when using tables backend")
		} else if err := validateServiceURL(c.TableServiceURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid TABLE_SERVICE_URL: %v", err))
		}
		if c.TransactionsTable == "" {
			errors = append(errors, "transactions table name cannot be empty when using tables backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	}

	// The import pipeline needs both halves or neither.
	if (c.BlobServiceURL == "") != (c.QueueServiceURL == "") {
		errors = append(errors, "BLOB_SERVICE_URL and QUEUE_SERVICE_URL must be set together")
	}
	if c.BlobServiceURL != "" {
		if err := validateServiceURL(c.BlobServiceURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid BLOB_SERVICE_URL: %v", err))
		}
	}
	if c.QueueServiceURL != "" {
		if err := validateServiceURL(c.QueueServiceURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid QUEUE_SERVICE_URL: %v", err))
		}
	}
	if c.ImportEnabled() {
		if c.ImportContainer == "" {
			errors = append(errors, "import container name cannot be empty when blob storage is configured")
		}
		if c.ImportQueue == "" {
			errors = append(errors, "import queue name cannot be empty when queue storage is configured")
		}
	}

	switch c.AuthMode {
	case "firebase":
		if c.FirebaseProjectID == "" {
			errors = append(errors, "FIREBASE_PROJECT_ID is required when using firebase auth")
		}
		if c.AuthCertsURL != "" {
			if err := validateServiceURL(c.AuthCertsURL); err != nil {
				errors = append(errors, fmt.Sprintf("invalid AUTH_CERTS_URL: %v", err))
			}
		}
	case "hmac":
		if len(c.AuthHMACSecret) < 16 {
			errors = append(errors, "AUTH_HMAC_SECRET must be at least 16 characters when using hmac auth")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid auth mode '%s': must be one of [firebase hmac]", c.AuthMode))
	}

	if (c.CommunicationServicesEndpoint == "") != (c.SenderEmail == "") {
		errors = append(errors, "COMMUNICATION_SERVICES_ENDPOINT and SENDER_EMAIL must be set together")
	}

	if !slices.Contains([]string{"json", "text"}, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'json' or 'text'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func validateServiceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme '%s' must be 'http' or 'https'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
