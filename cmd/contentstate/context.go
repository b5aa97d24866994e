package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/history"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/logging"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	store *history.Store
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// logger writes to stderr. The CLI stays quiet below warn unless --verbose.
func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	level := "warn"
	if c.verboseFlag != nil && *c.verboseFlag {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: "console"})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "init logger: %v\n", err)
		return logging.NewNop()
	}
	return logger
}

// service builds an api.Service. With history off (by config or withHistory
// false) no database is opened.
func (c *commandContext) service(cmd *cobra.Command, withHistory bool) (*api.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var store api.HistoryStore
	if withHistory && cfg.History.Enabled {
		if c.store == nil {
			opened, err := history.Open(cfg)
			if err != nil {
				return nil, fmt.Errorf("open history: %w", err)
			}
			c.store = opened
		}
		store = c.store
	}
	return api.NewService(cfg, store, c.logger(cmd)), nil
}

// historyService is service(cmd, true) but fails when history is disabled.
func (c *commandContext) historyService(cmd *cobra.Command) (*api.Service, error) {
	svc, err := c.service(cmd, true)
	if err != nil {
		return nil, err
	}
	if !svc.HistoryEnabled() {
		return nil, errors.New("history is disabled (set [history] enabled = true)")
	}
	return svc, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
