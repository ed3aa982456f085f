// Package config loads, normalizes, and validates TeachAssist configuration
// from TOML with sensible defaults for every section.
package config
