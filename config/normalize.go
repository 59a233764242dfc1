package config

import (
	"path/filepath"
	"strings"
)

func (c *Config) normalize() {
	c.normalizePool()
	c.normalizeLogging()
}

func (c *Config) normalizePool() {
	if c.Pool.PollIntervalMs == 0 {
		c.Pool.PollIntervalMs = defaultPollIntervalMs
	}
	c.Pool.Overflow = normalizeOverflow(c.Pool.Overflow)
}

func (c *Config) normalizeLogging() {
	c.Logging.LogDir = strings.TrimSpace(c.Logging.LogDir)
	if c.Logging.LogDir == "" {
		c.Logging.LogDir = defaultLogDir
	}
	c.Logging.LogDir = filepath.Clean(c.Logging.LogDir)
	c.Logging.Overflow = normalizeOverflow(c.Logging.Overflow)
	c.Logging.LevelMask = strings.ToLower(strings.TrimSpace(c.Logging.LevelMask))
	if c.Logging.LevelMask == "" {
		c.Logging.LevelMask = defaultLevelMask
	}
}

func normalizeOverflow(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.ReplaceAll(v, "-", "_")
	if v == "" {
		return defaultOverflow
	}
	return v
}
