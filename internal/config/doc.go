// Package config loads, normalizes, and validates kosha's TOML
// configuration.
//
// Load resolves the config path (explicit flag, then the default under
// ~/.config/kosha), decodes it over repository defaults, expands ~ in path
// fields, canonicalizes language codes, and validates the result. Secrets
// such as the API token may be supplied via environment variables instead of
// the file.
package config
