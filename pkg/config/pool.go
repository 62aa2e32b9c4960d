package config

import (
	"fmt"
	"time"

	"github.com/isopodio/isopod/pkg/core"
)

// PoolConfig is the file representation of coordinator settings
type PoolConfig struct {
	// MaxTasks bounds concurrently live isolates; zero picks the default
	MaxTasks int `yaml:"max_tasks" json:"max_tasks"`

	// DefaultTimeoutMS applies to calls without an explicit timeout,
	// in milliseconds; zero means wait indefinitely
	DefaultTimeoutMS int `yaml:"default_timeout_ms" json:"default_timeout_ms"`
}

// Validate rejects settings the coordinator cannot honor
func (c *PoolConfig) Validate() error {
	if c.MaxTasks < 0 {
		return fmt.Errorf("max_tasks must not be negative, got %d", c.MaxTasks)
	}
	if c.DefaultTimeoutMS < 0 {
		return fmt.Errorf("default_timeout_ms must not be negative, got %d", c.DefaultTimeoutMS)
	}
	return nil
}

// Options converts the file representation into coordinator options
func (c *PoolConfig) Options() core.Options {
	return core.Options{
		MaxTasks:       c.MaxTasks,
		DefaultTimeout: time.Duration(c.DefaultTimeoutMS) * time.Millisecond,
	}
}

// LoadPool loads a PoolConfig from path with ISOPOD_POOL_* env overrides
func LoadPool(path string) (*PoolConfig, error) {
	cfg := &PoolConfig{}
	if err := LoadWithEnv(path, "ISOPOD_POOL", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
