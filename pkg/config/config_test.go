package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTempFile(t, "pool.yaml", "max_tasks: 64\ndefault_timeout_ms: 5000\n")

	var cfg PoolConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTasks != 64 {
		t.Errorf("MaxTasks = %d, want 64", cfg.MaxTasks)
	}
	if cfg.DefaultTimeoutMS != 5000 {
		t.Errorf("DefaultTimeoutMS = %d, want 5000", cfg.DefaultTimeoutMS)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTempFile(t, "pool.json", `{"max_tasks": 32, "default_timeout_ms": 1000}`)

	var cfg PoolConfig
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTasks != 32 {
		t.Errorf("MaxTasks = %d, want 32", cfg.MaxTasks)
	}
}

func TestLoadYAML_Malformed(t *testing.T) {
	path := writeTempFile(t, "broken.yaml", "max_tasks: [not a number\n")

	var cfg PoolConfig
	if err := Load(path, &cfg); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg PoolConfig
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err == nil {
		t.Error("Load() error = nil, want read error")
	}
}

func TestLoadWithEnv_OverrideWins(t *testing.T) {
	path := writeTempFile(t, "pool.yaml", "max_tasks: 8\ndefault_timeout_ms: 100\n")

	t.Setenv("ISOPOD_POOL_MAXTASKS", "128")

	var cfg PoolConfig
	if err := LoadWithEnv(path, "ISOPOD_POOL", &cfg); err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if cfg.MaxTasks != 128 {
		t.Errorf("MaxTasks = %d, want 128 (env override)", cfg.MaxTasks)
	}
	if cfg.DefaultTimeoutMS != 100 {
		t.Errorf("DefaultTimeoutMS = %d, want 100 (file value kept)", cfg.DefaultTimeoutMS)
	}
}

func TestApplyEnvOverrides_RejectsNonStruct(t *testing.T) {
	var n int
	if err := ApplyEnvOverrides("ISOPOD", &n); err == nil {
		t.Error("ApplyEnvOverrides() error = nil, want error for non-struct target")
	}
	if err := ApplyEnvOverrides("ISOPOD", PoolConfig{}); err == nil {
		t.Error("ApplyEnvOverrides() error = nil, want error for non-pointer target")
	}
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PoolConfig
		wantErr bool
	}{
		{"defaults", PoolConfig{}, false},
		{"valid", PoolConfig{MaxTasks: 16, DefaultTimeoutMS: 200}, false},
		{"negative max_tasks", PoolConfig{MaxTasks: -1}, true},
		{"negative timeout", PoolConfig{DefaultTimeoutMS: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoolConfig_Options(t *testing.T) {
	cfg := PoolConfig{MaxTasks: 10, DefaultTimeoutMS: 250}
	opts := cfg.Options()

	if opts.MaxTasks != 10 {
		t.Errorf("Options().MaxTasks = %d, want 10", opts.MaxTasks)
	}
	if opts.DefaultTimeout != 250*time.Millisecond {
		t.Errorf("Options().DefaultTimeout = %v, want 250ms", opts.DefaultTimeout)
	}
}

func TestLoadPool(t *testing.T) {
	path := writeTempFile(t, "pool.yaml", "max_tasks: 4\n")

	cfg, err := LoadPool(path)
	if err != nil {
		t.Fatalf("LoadPool() error = %v", err)
	}
	if cfg.MaxTasks != 4 {
		t.Errorf("MaxTasks = %d, want 4", cfg.MaxTasks)
	}
}

func TestLoadPool_InvalidConfig(t *testing.T) {
	path := writeTempFile(t, "pool.yaml", "max_tasks: -3\n")

	if _, err := LoadPool(path); err == nil {
		t.Error("LoadPool() error = nil, want validation error")
	}
}
