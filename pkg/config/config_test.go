package config

import (
	"strings"
	"testing"
	"time"
)

func TestRead_Defaults(t *testing.T) {
	cfg := Read(NewViper())

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.LockBackend != LockBackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.LockBackend)
	}
	if cfg.LockTTL != 15*time.Minute {
		t.Errorf("expected 15m lock TTL, got %s", cfg.LockTTL)
	}
	if cfg.DefaultCleaningBuffer != 24*time.Hour {
		t.Errorf("expected 24h cleaning buffer, got %s", cfg.DefaultCleaningBuffer)
	}
	if len(cfg.HoldTokenKey) != 32 {
		t.Errorf("expected 32 byte hold token key, got %d", len(cfg.HoldTokenKey))
	}
	if cfg.MaxStay != 366*24*time.Hour {
		t.Errorf("expected 366 day max stay, got %s", cfg.MaxStay)
	}
}

func TestRead_Environment(t *testing.T) {
	t.Setenv(EnvLockBackend, "ETCD")
	t.Setenv(EnvLockTTL, "90s")
	t.Setenv(EnvEtcdEndpoints, "etcd-0:2379, etcd-1:2379,")
	t.Setenv(EnvKafkaEnabled, "true")
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvMaxStay, "720h")

	cfg := Read(NewViper())

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if cfg.LockBackend != LockBackendEtcd {
		t.Errorf("expected etcd backend, got %s", cfg.LockBackend)
	}
	if cfg.LockTTL != 90*time.Second {
		t.Errorf("expected 90s, got %s", cfg.LockTTL)
	}
	if len(cfg.EtcdEndpoints) != 2 || cfg.EtcdEndpoints[1] != "etcd-1:2379" {
		t.Errorf("unexpected endpoints: %v", cfg.EtcdEndpoints)
	}
	if !cfg.KafkaEnabled {
		t.Error("expected kafka to be enabled")
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.MaxStay != 30*24*time.Hour {
		t.Errorf("expected 720h max stay, got %s", cfg.MaxStay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = "0" },
			wantErr: "Port must be between",
		},
		{
			name:    "bad mongo uri",
			mutate:  func(c *Config) { c.MongoURI = "postgres://localhost" },
			wantErr: "MongoURI must start with",
		},
		{
			name:    "non-positive max stay",
			mutate:  func(c *Config) { c.MaxStay = 0 },
			wantErr: "MaxStay must be positive",
		},
		{
			name:    "unknown lock backend",
			mutate:  func(c *Config) { c.LockBackend = "redis" },
			wantErr: "LockBackend must be one of",
		},
		{
			name:    "non-positive lock ttl",
			mutate:  func(c *Config) { c.LockTTL = 0 },
			wantErr: "LockTTL must be positive",
		},
		{
			name:    "invalid sweep schedule",
			mutate:  func(c *Config) { c.LockSweepSchedule = "sometimes" },
			wantErr: "LockSweepSchedule",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "LogFormat must be one of",
		},
		{
			name:    "negative cleaning buffer",
			mutate:  func(c *Config) { c.DefaultCleaningBuffer = -time.Hour },
			wantErr: "DefaultCleaningBuffer cannot be negative",
		},
		{
			name:    "short hold token key",
			mutate:  func(c *Config) { c.HoldTokenKey = []byte("short") },
			wantErr: "HoldTokenKey",
		},
		{
			name: "etcd without endpoints",
			mutate: func(c *Config) {
				c.LockBackend = LockBackendEtcd
				c.EtcdEndpoints = nil
			},
			wantErr: "EtcdEndpoints cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Read(NewViper())
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017")
	if strings.Contains(got, "secret") || strings.Contains(got, "admin") {
		t.Errorf("credentials not redacted: %s", got)
	}
}

func TestNormalizePaginationLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 10},
		{-5, 10},
		{50, 50},
		{DefaultPaginationLimit + 1, DefaultPaginationLimit},
	}
	for _, tt := range tests {
		if got := NormalizePaginationLimit(tt.in); got != tt.want {
			t.Errorf("NormalizePaginationLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
