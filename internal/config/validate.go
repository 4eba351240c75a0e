package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/embdr/config.toml"
		}
		return fmt.Errorf("server.api_key is required. Set EMBDR_API_KEY env var or edit %s (create with 'embdr config init')", defaultPath)
	}
	switch c.Server.Protocol {
	case "http", "https":
	default:
		return fmt.Errorf("server.protocol must be http or https, got %q", c.Server.Protocol)
	}
	if c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}

func (c *Config) validatePolling() error {
	if c.Polling.InitialDelayMs <= 0 {
		return errors.New("polling.initial_delay_ms must be positive")
	}
	if c.Polling.BackoffDenominator <= 0 {
		return errors.New("polling.backoff_denominator must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
