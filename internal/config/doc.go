// Package config loads, normalizes, and validates ssequote configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads .env files, and honours environment
// fallbacks such as REV_API_KEY. Always obtain settings through this package
// so downstream code receives sanitized paths and clear validation errors.
package config
