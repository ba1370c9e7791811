package config

import (
	"fmt"
	"os"
	"strings"

	"kosha/internal/langtag"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLanguages(); err != nil {
		return err
	}
	if err := c.normalizeSessions(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if c.Paths.LibraryDir, err = ExpandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if token := strings.TrimSpace(os.Getenv("KOSHA_API_TOKEN")); token != "" {
		c.Paths.APIToken = token
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeLanguages() error {
	if len(c.Languages.Required) == 0 {
		c.Languages.Required = append([]string(nil), defaultRequiredLanguages...)
	}
	normalized, err := langtag.NormalizeList(c.Languages.Required)
	if err != nil {
		return fmt.Errorf("languages.required: %w", err)
	}
	c.Languages.Required = normalized
	return nil
}

func (c *Config) normalizeSessions() error {
	c.Sessions.Backend = strings.ToLower(strings.TrimSpace(c.Sessions.Backend))
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = defaultSessionBackend
	}
	if strings.TrimSpace(c.Sessions.Path) == "" {
		c.Sessions.Path = defaultSessionPath
	}
	var err error
	if c.Sessions.Path, err = ExpandPath(c.Sessions.Path); err != nil {
		return fmt.Errorf("sessions.path: %w", err)
	}
	if c.Sessions.TTLHours <= 0 {
		c.Sessions.TTLHours = defaultSessionTTLHours
	}
	return nil
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
