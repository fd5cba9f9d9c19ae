package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ENV_AUTH_ID       = "BW_AUTH_ID"
	ENV_API_KEY       = "BW_API_KEY"
	ENV_BASE_URL      = "BW_BASE_URL"
	ENV_TIMEOUT_SECS  = "BW_TIMEOUT_SECS"
	ENV_DATA_DIR      = "TRACKER_DATA_DIR"
	ENV_INTERVAL_MINS = "TRACKER_INTERVAL_MINS"
	ENV_RATE_PER_SEC  = "TRACKER_RATE_PER_SEC"
	ENV_LOG_LEVEL     = "LOG_LEVEL"
	DEFAULT_ENV_FILE  = ".env"
)

// Loads the given .env files into the process environment if they exist.
// A missing file is not an error, real environment variables still apply.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{DEFAULT_ENV_FILE}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}

func GetEnviroVar(name string) (string, error) {
	v, found := os.LookupEnv(name)
	if !found {
		return "", fmt.Errorf("environment variable %q must be specified", name)
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("environment variable %q must not be empty", name)
	}

	return v, nil
}

// Reads and parses the variable, returning fallback when it is unset or blank.
// A set but unparsable value is an error rather than a silent fallback.
func EnviroVarOr[T any](name string, fallback T) (T, error) {
	v, err := GetEnviroVar(name)
	if err != nil {
		return fallback, nil
	}

	parsed, err := ParseEnviroVar[T](v)
	if err != nil {
		return fallback, fmt.Errorf("environment variable %q: %w", name, err)
	}

	return parsed, nil
}

// Parses an EnviroVar to the desired type
func ParseEnviroVar[T any](v string) (T, error) {
	var zero T

	switch any(zero).(type) {
	case string:
		return any(v).(T), nil
	case bool:
		val, err := strconv.ParseBool(v)
		if err != nil {
			return zero, fmt.Errorf("failed to parse %q as bool: %v", v, err)
		}

		return any(val).(T), nil
	case int:
		val, err := strconv.Atoi(v)
		if err != nil {
			return zero, fmt.Errorf("failed to parse %q as int: %v", v, err)
		}

		return any(val).(T), nil
	case float64:
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return zero, fmt.Errorf("failed to parse %q as float64: %v", v, err)
		}

		return any(val).(T), nil
	case time.Duration:
		val, err := time.ParseDuration(v)
		if err != nil {
			return zero, fmt.Errorf("failed to parse %q as duration: %v", v, err)
		}

		return any(val).(T), nil
	}

	return zero, fmt.Errorf("unsupported environment variable type %T", zero)
}
