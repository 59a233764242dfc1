// Package config loads, normalizes, and validates task pool and log pipeline
// configuration.
//
// It supplies defaults, reads TOML files, and converts the result into the
// runtime option types of the core and logpipe packages. Obtain settings
// through this package so the pool and the pipeline receive sanitized values
// and clear validation errors.
package config
