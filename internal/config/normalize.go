package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	c.normalizePolling()
	c.normalizeLogging()
	return c.normalizeHistory()
}

func (c *Config) normalizeServer() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port <= 0 {
		c.Server.Port = defaultPort
	}
	c.Server.Protocol = strings.ToLower(strings.TrimSpace(c.Server.Protocol))
	if c.Server.Protocol == "" {
		c.Server.Protocol = defaultProtocol
	}
	c.Server.BasePath = strings.TrimSpace(c.Server.BasePath)
	if c.Server.BasePath == "" {
		c.Server.BasePath = defaultBasePath
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}

	c.Server.APIKey = strings.TrimSpace(c.Server.APIKey)
	if c.Server.APIKey == "" {
		c.Server.APIKey = strings.TrimSpace(os.Getenv("EMBDR_API_KEY"))
	}
}

func (c *Config) normalizePolling() {
	if c.Polling.InitialDelayMs <= 0 {
		c.Polling.InitialDelayMs = defaultInitialDelayMs
	}
	if c.Polling.BackoffDenominator <= 0 {
		c.Polling.BackoffDenominator = defaultBackoffDenominator
	}
	if c.Polling.MaxAttempts < 0 {
		c.Polling.MaxAttempts = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Dir) == "" {
		c.History.Dir = defaultHistoryDir
	}
	expanded, err := expandPath(c.History.Dir)
	if err != nil {
		return fmt.Errorf("history.dir: %w", err)
	}
	c.History.Dir = expanded
	return nil
}
