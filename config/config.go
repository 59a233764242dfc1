package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Swind/go-task-pool/core"
	"github.com/Swind/go-task-pool/logpipe"
)

//go:embed sample_config.toml
var sampleConfig string

// Pool contains worker pool settings.
type Pool struct {
	Threads        int    `toml:"threads"`
	PollIntervalMs int    `toml:"poll_interval_ms"`
	QueueCapacity  int    `toml:"queue_capacity"`
	Overflow       string `toml:"overflow"`
}

// Logging contains log pipeline settings.
type Logging struct {
	LogToStdout     bool   `toml:"log_to_stdout"`
	LogToLatestLog  bool   `toml:"log_to_latest_log"`
	LogToUniqueFile bool   `toml:"log_to_unique_file"`
	LogDir          string `toml:"log_dir"`
	Async           bool   `toml:"async"`
	QueueCapacity   int    `toml:"queue_capacity"`
	Overflow        string `toml:"overflow"`
	LevelMask       string `toml:"level_mask"`
}

// Config encapsulates all configuration values.
//
// Configuration sections by subsystem:
//   - Pool: worker count, idle polling and queue bounds
//   - Logging: built-in hooks, dispatch mode and queue bounds
type Config struct {
	Pool    Pool    `toml:"pool"`
	Logging Logging `toml:"logging"`
}

// Load parses and validates a configuration file. An empty path means
// taskpool.toml in the working directory. A missing file is not an error:
// defaults are returned and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("resolve config path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", abs)
	}
	return abs, true, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// PoolConfig converts the [pool] section. Logger and Metrics are left for the
// caller to wire.
func (c *Config) PoolConfig() *core.PoolConfig {
	overflow, _ := core.ParseOverflowPolicy(c.Pool.Overflow)
	return &core.PoolConfig{
		PollInterval:  time.Duration(c.Pool.PollIntervalMs) * time.Millisecond,
		QueueCapacity: c.Pool.QueueCapacity,
		Overflow:      overflow,
	}
}

// LogOptions converts the [logging] section. pool is used only when async
// is enabled.
func (c *Config) LogOptions(pool logpipe.Dispatcher) logpipe.Options {
	overflow, _ := core.ParseOverflowPolicy(c.Logging.Overflow)
	opts := logpipe.Options{
		LogToStdout:     c.Logging.LogToStdout,
		LogToLatestLog:  c.Logging.LogToLatestLog,
		LogToUniqueFile: c.Logging.LogToUniqueFile,
		LogDir:          c.Logging.LogDir,
		QueueCapacity:   c.Logging.QueueCapacity,
		Overflow:        overflow,
		Mask:            c.LevelMask(),
	}
	if c.Logging.Async {
		opts.Pool = pool
	}
	return opts
}

// LevelMask returns the parsed logging.level_mask.
func (c *Config) LevelMask() logpipe.Level {
	mask, err := logpipe.ParseMask(c.Logging.LevelMask)
	if err != nil {
		return logpipe.LevelAll
	}
	return mask
}
