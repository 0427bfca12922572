// Package config loads, validates, and normalizes the subweave TOML
// configuration file.
package config
