package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Alerting
	WarningAutoDismiss time.Duration

	// Period watcher
	PeriodCheckInterval time.Duration

	// Artificial latency applied to mutating commands. Zero disables it;
	// the non-interactive path must observe the same end state either way.
	SimulatedLatency time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),

		WarningAutoDismiss:  getEnvDuration("WARNING_AUTO_DISMISS", 5*time.Second),
		PeriodCheckInterval: getEnvDuration("PERIOD_CHECK_INTERVAL", time.Minute),
		SimulatedLatency:    getEnvDuration("SIMULATED_LATENCY", 0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate SQLite path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
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

	if c.WarningAutoDismiss <= 0 {
		errors = append(errors, fmt.Sprintf("invalid warning auto dismiss %v: must be positive", c.WarningAutoDismiss))
	} else if c.WarningAutoDismiss > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid warning auto dismiss %v: must be at most 1 minute", c.WarningAutoDismiss))
	}

	if c.PeriodCheckInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid period check interval %v: must be at least 1 second", c.PeriodCheckInterval))
	} else if c.PeriodCheckInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid period check interval %v: must be at most 24 hours", c.PeriodCheckInterval))
	}

	if c.SimulatedLatency < 0 {
		errors = append(errors, fmt.Sprintf("invalid simulated latency %v: must not be negative", c.SimulatedLatency))
	} else if c.SimulatedLatency > 5*time.Second {
		errors = append(errors, fmt.Sprintf("invalid simulated latency %v: must be at most 5 seconds", c.SimulatedLatency))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
