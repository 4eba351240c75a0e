package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/embdr/embdr-go/internal/config"
	"github.com/embdr/embdr-go/internal/history"
	"github.com/embdr/embdr-go/internal/logging"
	"github.com/embdr/embdr-go/pkg/processr"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// newClient builds a processr client from the resolved configuration,
// including the poller tuning from the [polling] section.
func (c *commandContext) newClient() (*processr.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	return processr.New(cfg.Client(),
		processr.WithLogger(logger),
		processr.WithInitialPollDelay(time.Duration(cfg.Polling.InitialDelayMs)*time.Millisecond),
		processr.WithBackoffDenominator(cfg.Polling.BackoffDenominator),
		processr.WithMaxPollAttempts(cfg.Polling.MaxAttempts),
	), nil
}

// openHistory opens the submission history store. The second return value is
// false when history is disabled in the configuration; the caller skips
// recording in that case.
func (c *commandContext) openHistory() (*history.Store, bool, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, false, err
	}
	if !cfg.History.Enabled {
		return nil, false, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("open history: %w", err)
	}
	return store, true, nil
}
