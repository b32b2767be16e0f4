// Package config handles configuration management for fsbridge.
// It layers embedded defaults, an optional TOML or YAML file,
// FSBRIDGE_* environment variables and command-line flags.
package config
