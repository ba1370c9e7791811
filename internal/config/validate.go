package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLanguages() error {
	if len(c.Languages.Required) == 0 {
		return errors.New("languages.required must list at least one language code")
	}
	return nil
}

func (c *Config) validateSessions() error {
	switch c.Sessions.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("sessions.backend must be \"memory\" or \"sqlite\", got %q", c.Sessions.Backend)
	}
	if c.Sessions.Backend == "sqlite" && c.Sessions.Path == "" {
		return errors.New("sessions.path must be set when sessions.backend is sqlite")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
