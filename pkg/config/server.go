package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds the HTTP server settings read from the environment.
type ServerConfig struct {
	Host  string
	Port  string
	Debug bool
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LoadServerConfigFromEnv reads HOST, PORT and DEBUG with defaults.
func LoadServerConfigFromEnv() *ServerConfig {
	return &ServerConfig{
		Host:  getEnv("HOST", "0.0.0.0"),
		Port:  getEnv("PORT", "8080"),
		Debug: getEnvBool("DEBUG", false),
	}
}

// LoadExecutionLimitsFromEnv returns the default limits overridden by the
// recognized environment variables. Invalid values are rejected rather than
// silently ignored so misconfigured deployments fail at startup.
func LoadExecutionLimitsFromEnv() (*ExecutionLimits, error) {
	limits := DefaultExecutionLimits()

	if v := os.Getenv("MAX_CONCURRENT_RUNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_RUNS %q: must be a positive integer", v)
		}
		limits.MaxConcurrentRuns = n
	}
	if v := os.Getenv("MAX_CONCURRENT_MODEL_CALLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_MODEL_CALLS %q: must be a positive integer", v)
		}
		limits.MaxConcurrentModelCalls = n
	}
	if v := os.Getenv("RUN_RETENTION_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid RUN_RETENTION_SECONDS %q: must be a non-negative integer", v)
		}
		limits.RunRetention = time.Duration(n) * time.Second
	}
	return limits, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}
