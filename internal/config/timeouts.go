package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	HelmInstall       time.Duration // Timeout for a single Helm install or upgrade
	ManifestApply     time.Duration // Timeout for applying one region's manifests
	RetryMaxAttempts  int           // Maximum number of retry attempts for AWS API calls
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - MREKS_TIMEOUT_HELM (default: 10m)
//   - MREKS_TIMEOUT_APPLY (default: 5m)
//   - MREKS_RETRY_MAX_ATTEMPTS (default: 3)
//   - MREKS_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		HelmInstall:       parseDuration("MREKS_TIMEOUT_HELM", 10*time.Minute),
		ManifestApply:     parseDuration("MREKS_TIMEOUT_APPLY", 5*time.Minute),
		RetryMaxAttempts:  parseInt("MREKS_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("MREKS_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
