package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	DataDir                    string
	SchemaVersion              int
	ShareOrigin                string
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	BackupBudgetBytes          int64
	BackupInterval             time.Duration
	BackupSkipThresholdPct     int
	ReplicationEnabled         bool
	ReplicationEndpoint        string
	ReplicationWorkers         int
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	schemaVersion, err := getEnvAsInt("SCHEMA_VERSION", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEMA_VERSION: %w", err)
	}
	if schemaVersion < 1 {
		return Config{}, fmt.Errorf("SCHEMA_VERSION must be >= 1")
	}

	backupBudgetBytes, err := getEnvAsInt("BACKUP_BUDGET_BYTES", 5<<20)
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKUP_BUDGET_BYTES: %w", err)
	}
	if backupBudgetBytes <= 0 {
		return Config{}, fmt.Errorf("BACKUP_BUDGET_BYTES must be > 0")
	}

	backupInterval, err := time.ParseDuration(getEnv("BACKUP_INTERVAL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKUP_INTERVAL: %w", err)
	}
	if backupInterval <= 0 {
		return Config{}, fmt.Errorf("BACKUP_INTERVAL must be > 0")
	}

	backupSkipThresholdPct, err := getEnvAsInt("BACKUP_SKIP_THRESHOLD_PCT", 80)
	if err != nil {
		return Config{}, fmt.Errorf("parse BACKUP_SKIP_THRESHOLD_PCT: %w", err)
	}
	if backupSkipThresholdPct < 1 || backupSkipThresholdPct > 100 {
		return Config{}, fmt.Errorf("BACKUP_SKIP_THRESHOLD_PCT must be between 1 and 100")
	}

	replicationEnabled, err := strconv.ParseBool(getEnv("REPLICATION_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REPLICATION_ENABLED: %w", err)
	}
	replicationEndpoint := strings.TrimSpace(getEnv("REPLICATION_ENDPOINT", ""))
	if replicationEnabled && replicationEndpoint == "" {
		return Config{}, fmt.Errorf("REPLICATION_ENDPOINT is required when REPLICATION_ENABLED=true")
	}
	replicationWorkers, err := getEnvAsInt("REPLICATION_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse REPLICATION_WORKERS: %w", err)
	}
	if replicationWorkers < 1 {
		return Config{}, fmt.Errorf("REPLICATION_WORKERS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "clubkit"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		DataDir:                    getEnv("APP_DATA_DIR", "./data"),
		SchemaVersion:              schemaVersion,
		ShareOrigin:                getEnv("SHARE_ORIGIN", "https://clubkit.app"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		BackupBudgetBytes:          int64(backupBudgetBytes),
		BackupInterval:             backupInterval,
		BackupSkipThresholdPct:     backupSkipThresholdPct,
		ReplicationEnabled:         replicationEnabled,
		ReplicationEndpoint:        replicationEndpoint,
		ReplicationWorkers:         replicationWorkers,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return Config{}, fmt.Errorf("APP_DATA_DIR cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
