package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not a valid host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateLLM() error {
	// An empty api_key is allowed: the service falls back to the fixture
	// provider. When a key is present the endpoint settings must be usable.
	if c.LLM.APIKey == "" {
		return nil
	}
	if c.LLM.BaseURL == "" {
		return errors.New("llm.base_url must be set when llm.api_key is configured")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set when llm.api_key is configured")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	lang := c.Generation.TranslationLanguage
	if len(lang) < 2 || len(lang) > 8 {
		return fmt.Errorf("generation.translation_language %q is not a language code", lang)
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
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
