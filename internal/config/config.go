package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	TelegramToken  string
	CommandTimeout time.Duration
	ChatRateLimit  int

	// Ops HTTP server
	HTTPAddr string

	// Storage backend selection
	BackendType  string
	SQLiteDBPath string
	PostgresDSN  string

	// AMQP (optional; events are disabled when the URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (worker)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		CommandTimeout: getEnvDuration("COMMAND_TIMEOUT", 10*time.Second),
		ChatRateLimit:  getEnvInt("CHAT_RATE_LIMIT", 20),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		BackendType:  getEnv("BACKEND_TYPE", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./centesimi.db"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "centesimi.events"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "centesimi.mirror"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration, collecting every problem before
// reporting. The bot token is checked by the bot itself so the worker can
// run from the same environment without one.
func (c *Config) Validate() error {
	var errors []string

	if _, port, err := net.SplitHostPort(c.HTTPAddr); err != nil {
		errors = append(errors, fmt.Sprintf("invalid HTTP address '%s': %v", c.HTTPAddr, err))
	} else if p, err := strconv.Atoi(port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid HTTP port '%s': must be a number", port))
	} else if p < 1 || p > 65535 {
		errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", p))
	}

	validBackends := []string{"memory", "postgres", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.BackendType == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid backend type '%s': must be one of %v", c.BackendType, validBackends))
	}

	if c.BackendType == "sqlite" {
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

	if c.BackendType == "postgres" && c.PostgresDSN == "" {
		errors = append(errors, "Postgres DSN cannot be empty when using postgres backend")
	}

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

	if c.CommandTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid command timeout %v: must be at least 1 second", c.CommandTimeout))
	} else if c.CommandTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid command timeout %v: must be at most 5 minutes", c.CommandTimeout))
	}

	if c.ChatRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid chat rate limit %d: must be at least 1", c.ChatRateLimit))
	} else if c.ChatRateLimit > 600 {
		errors = append(errors, fmt.Sprintf("invalid chat rate limit %d: must be at most 600", c.ChatRateLimit))
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
