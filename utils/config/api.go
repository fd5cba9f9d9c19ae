package config

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Settings needed to build an API client.
type APIConfig struct {
	AuthID  string
	APIKey  string
	BaseURL string // Empty means the public API.
	Timeout time.Duration
}

// Reads credentials and transport settings from the environment.
// Missing credentials are reported together so the user can fix them in one go.
func APIConfigFromEnv() (APIConfig, error) {
	cfg := APIConfig{}

	var errs []error
	var err error
	if cfg.AuthID, err = GetEnviroVar(ENV_AUTH_ID); err != nil {
		errs = append(errs, err)
	}
	if cfg.APIKey, err = GetEnviroVar(ENV_API_KEY); err != nil {
		errs = append(errs, err)
	}

	cfg.BaseURL, _ = EnviroVarOr(ENV_BASE_URL, "")

	secs, err := EnviroVarOr(ENV_TIMEOUT_SECS, 8)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Timeout = time.Duration(secs) * time.Second

	return cfg, errors.Join(errs...)
}

// Applies LOG_LEVEL to the standard logrus logger. Defaults to info.
func ConfigureLogging() {
	level, _ := EnviroVarOr(ENV_LOG_LEVEL, "info")

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown %s %q, using info", ENV_LOG_LEVEL, level)
		parsed = log.InfoLevel
	}

	log.SetLevel(parsed)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
