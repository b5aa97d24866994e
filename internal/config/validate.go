package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateViewers(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.MaxEntries < 0 {
		return errors.New("history.max_entries must be >= 0 (0 keeps every entry)")
	}
	return nil
}

func (c *Config) validateBatch() error {
	return ensurePositiveMap(map[string]int{
		"batch.workers":        c.Batch.Workers,
		"batch.max_references": c.Batch.MaxReferences,
	})
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
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateViewers() error {
	seen := make(map[string]struct{}, len(c.Viewers))
	for i, v := range c.Viewers {
		if v.Name == "" {
			return fmt.Errorf("viewers[%d].name must be set", i)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("viewers[%d].name %q is defined more than once", i, v.Name)
		}
		seen[v.Name] = struct{}{}
		if err := ValidateViewerURL(v.BaseURL); err != nil {
			return fmt.Errorf("viewers[%d].base_url: %w", i, err)
		}
	}
	return nil
}

// ValidateViewerURL requires an absolute http or https URL.
func ValidateViewerURL(raw string) error {
	if raw == "" {
		return errors.New("must be set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
