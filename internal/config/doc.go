// Package config loads and validates the TOML configuration for the embdr
// CLI.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/embdr/config.toml, then embdr.toml in the working directory.
// Defaults cover everything except the API key, which may also arrive via the
// EMBDR_API_KEY environment variable. Loading always normalizes paths and
// validates the result, so downstream packages can rely on a usable Config.
package config
