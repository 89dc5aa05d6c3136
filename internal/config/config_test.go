package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected default env %s, got %s", EnvDev, cfg.AppEnv)
	}
	if cfg.ServiceName != "clubkit" || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DataDir != "./data" {
		t.Fatalf("unexpected data dir %q", cfg.DataDir)
	}
	if cfg.BackupBudgetBytes != 5<<20 {
		t.Fatalf("unexpected backup budget %d", cfg.BackupBudgetBytes)
	}
	if cfg.BackupInterval != 15*time.Minute {
		t.Fatalf("unexpected backup interval %s", cfg.BackupInterval)
	}
	if cfg.BackupSkipThresholdPct != 80 {
		t.Fatalf("unexpected skip threshold %d", cfg.BackupSkipThresholdPct)
	}
	if cfg.ReplicationEnabled {
		t.Fatalf("replication must default to disabled")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_ReplicationRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REPLICATION_ENABLED", "true")
	t.Setenv("REPLICATION_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when REPLICATION_ENABLED=true without REPLICATION_ENDPOINT")
	}
}

func TestLoad_ReplicationConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("REPLICATION_ENABLED", "true")
	t.Setenv("REPLICATION_ENDPOINT", "https://sync.clubkit.app/v1/events")
	t.Setenv("REPLICATION_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.ReplicationEnabled || cfg.ReplicationEndpoint != "https://sync.clubkit.app/v1/events" {
		t.Fatalf("unexpected replication config: %+v", cfg)
	}
	if cfg.ReplicationWorkers != 8 {
		t.Fatalf("expected 8 workers, got %d", cfg.ReplicationWorkers)
	}
}

func TestLoad_SkipThresholdRange(t *testing.T) {
	t.Setenv("BACKUP_SKIP_THRESHOLD_PCT", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for BACKUP_SKIP_THRESHOLD_PCT=0")
	}

	t.Setenv("BACKUP_SKIP_THRESHOLD_PCT", "101")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for BACKUP_SKIP_THRESHOLD_PCT=101")
	}
}

func TestLoad_SchemaVersionValidation(t *testing.T) {
	t.Setenv("SCHEMA_VERSION", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SCHEMA_VERSION=0")
	}

	t.Setenv("SCHEMA_VERSION", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric SCHEMA_VERSION")
	}
}

func TestLoad_BackupIntervalValidation(t *testing.T) {
	t.Setenv("BACKUP_INTERVAL", "-5m")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative BACKUP_INTERVAL")
	}
}
