package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	SeedFile     string

	// AMQP (statement-closed notifications)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Reporting
	CycleCount             int
	ReportLookbackDays     int
	StatementCheckInterval time.Duration

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	LogLevel string
}

var validBackends = []string{"memory", "sqlite"}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/billcycle.db"),
		SeedFile:     getEnv("SEED_FILE", "./data/seed.yaml"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "billcycle"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "statement_closed"),

		CycleCount:             getEnvInt("CYCLE_COUNT", 6),
		ReportLookbackDays:     getEnvInt("REPORT_LOOKBACK_DAYS", 120),
		StatementCheckInterval: getEnvDuration("STATEMENT_CHECK_INTERVAL", time.Hour),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Statements"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
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

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// AMQP is optional; when set it must be usable
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CycleCount < 1 || c.CycleCount > 120 {
		errors = append(errors, fmt.Sprintf("invalid cycle count %d: must be between 1 and 120", c.CycleCount))
	}

	if c.ReportLookbackDays < 31 || c.ReportLookbackDays > 3660 {
		errors = append(errors, fmt.Sprintf("invalid report lookback %d days: must be between 31 and 3660", c.ReportLookbackDays))
	}

	if c.StatementCheckInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid statement check interval %v: must be at least 1 minute", c.StatementCheckInterval))
	} else if c.StatementCheckInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid statement check interval %v: must be at most 24 hours", c.StatementCheckInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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
