package config

import (
	"errors"
	"fmt"

	"github.com/Swind/go-task-pool/core"
	"github.com/Swind/go-task-pool/logpipe"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePool(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePool() error {
	if c.Pool.Threads < 0 {
		return errors.New("pool.threads must be zero or positive")
	}
	if c.Pool.PollIntervalMs <= 0 {
		return errors.New("pool.poll_interval_ms must be positive")
	}
	if c.Pool.QueueCapacity < 0 {
		return errors.New("pool.queue_capacity must be zero or positive")
	}
	if _, err := core.ParseOverflowPolicy(c.Pool.Overflow); err != nil {
		return fmt.Errorf("pool.overflow must be block, drop_oldest or reject: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.QueueCapacity < 0 {
		return errors.New("logging.queue_capacity must be zero or positive")
	}
	if _, err := core.ParseOverflowPolicy(c.Logging.Overflow); err != nil {
		return fmt.Errorf("logging.overflow must be block, drop_oldest or reject: %w", err)
	}
	if _, err := logpipe.ParseMask(c.Logging.LevelMask); err != nil {
		return fmt.Errorf("logging.level_mask: %w", err)
	}
	return nil
}
