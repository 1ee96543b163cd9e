// Package config loads, normalizes, and validates filesort configuration data.
//
// It supplies repository defaults (including the built-in category table and
// filename label rules), expands user paths (including tilde shortcuts),
// reads TOML files, optionally pulls the category table from a separate TOML
// or YAML file, and honours environment fallbacks such as
// FILESORT_LOG_LEVEL. A .env file in the working directory is loaded before
// environment lookups.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
