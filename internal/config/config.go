package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/sportunion-stats/internal/domain/season"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
)

// DefaultSeasons serves both shipped snapshots from disk. Set SEASONS with a
// source url and refreshable=true to let a season refresh from the stats API.
const DefaultSeasons = "24/25|data/season_2425.json,25/26|data/season_2526.json"

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration
	LogLevel                      logging.Level
	CORSAllowedOrigins            []string
	SwaggerEnabled                bool
	RefreshToken                  string
	Seasons                       []season.Config
	StatsAPITimeout               time.Duration
	StatsAPIMaxBodyBytes          int64
	StatsAPICircuitEnabled        bool
	StatsAPICircuitFailureCount   int
	StatsAPICircuitOpenTimeout    time.Duration
	StatsAPICircuitHalfOpenMaxReq int
	MemoTTL                       time.Duration
	PayloadMaxChars               int
	DBEnabled                     bool
	DBURL                         string
	DBDisablePreparedBinary       bool
	UptraceEnabled                bool
	UptraceDSN                    string
	PyroscopeEnabled              bool
	PyroscopeServerAddress        string
	PyroscopeAppName              string
	PyroscopeAuthToken            string
	PyroscopeBasicAuthUser        string
	PyroscopeBasicAuthPassword    string
	PyroscopeUploadRate           time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	// Refresh requests wait for a full network fetch, so the write timeout is generous.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "90s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	seasons, err := ParseSeasons(getEnv("SEASONS", DefaultSeasons))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASONS: %w", err)
	}

	statsAPITimeout, err := time.ParseDuration(getEnv("STATS_API_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_API_TIMEOUT: %w", err)
	}
	if statsAPITimeout <= 0 {
		return Config{}, fmt.Errorf("STATS_API_TIMEOUT must be > 0")
	}
	statsAPIMaxBodyMB, err := getEnvAsInt("STATS_API_MAX_BODY_MB", 32)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_API_MAX_BODY_MB: %w", err)
	}
	if statsAPIMaxBodyMB <= 0 {
		return Config{}, fmt.Errorf("STATS_API_MAX_BODY_MB must be > 0")
	}
	statsAPICircuitEnabled, err := strconv.ParseBool(getEnv("STATS_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_API_CIRCUIT_ENABLED: %w", err)
	}
	statsAPICircuitFailureCount, err := getEnvAsInt("STATS_API_CIRCUIT_FAILURE_COUNT", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if statsAPICircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STATS_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	statsAPICircuitOpenTimeout, err := time.ParseDuration(getEnv("STATS_API_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if statsAPICircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STATS_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	statsAPICircuitHalfOpenMaxReq, err := getEnvAsInt("STATS_API_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if statsAPICircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STATS_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	memoTTL, err := time.ParseDuration(getEnv("MEMO_TTL", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MEMO_TTL: %w", err)
	}
	if memoTTL < 0 {
		return Config{}, fmt.Errorf("MEMO_TTL must be >= 0")
	}
	payloadMaxChars, err := getEnvAsInt("PAYLOAD_MAX_CHARS", 120000)
	if err != nil {
		return Config{}, fmt.Errorf("parse PAYLOAD_MAX_CHARS: %w", err)
	}
	if payloadMaxChars < 100 {
		return Config{}, fmt.Errorf("PAYLOAD_MAX_CHARS must be >= 100")
	}

	dbEnabled, err := strconv.ParseBool(getEnv("DB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when DB_ENABLED=true")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
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

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "sportunion-stats"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		LogLevel:                      parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:                swaggerEnabled,
		RefreshToken:                  strings.TrimSpace(getEnv("REFRESH_TOKEN", "")),
		Seasons:                       seasons,
		StatsAPITimeout:               statsAPITimeout,
		StatsAPIMaxBodyBytes:          int64(statsAPIMaxBodyMB) << 20,
		StatsAPICircuitEnabled:        statsAPICircuitEnabled,
		StatsAPICircuitFailureCount:   statsAPICircuitFailureCount,
		StatsAPICircuitOpenTimeout:    statsAPICircuitOpenTimeout,
		StatsAPICircuitHalfOpenMaxReq: statsAPICircuitHalfOpenMaxReq,
		MemoTTL:                       memoTTL,
		PayloadMaxChars:               payloadMaxChars,
		DBEnabled:                     dbEnabled,
		DBURL:                         dbURL,
		DBDisablePreparedBinary:       dbDisablePreparedBinary,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// ParseSeasons reads comma separated "label|cache_path|source_url|refreshable" items.
// source_url and refreshable may be omitted; refreshable defaults to false.
func ParseSeasons(raw string) ([]season.Config, error) {
	out := make([]season.Config, 0, 2)
	for _, item := range splitCSV(raw) {
		segments := strings.Split(item, "|")
		if len(segments) < 2 || len(segments) > 4 {
			return nil, fmt.Errorf("invalid season item %q, expected label|cache_path|source_url|refreshable", item)
		}
		for i := range segments {
			segments[i] = strings.TrimSpace(segments[i])
		}

		cfg := season.Config{Label: segments[0], CachePath: segments[1]}
		if len(segments) > 2 {
			cfg.SourceURL = segments[2]
		}
		if len(segments) > 3 && segments[3] != "" {
			refreshable, err := strconv.ParseBool(segments[3])
			if err != nil {
				return nil, fmt.Errorf("invalid refreshable flag in item %q: %w", item, err)
			}
			cfg.AllowFetch = refreshable
		}
		if cfg.AllowFetch && cfg.SourceURL == "" {
			return nil, fmt.Errorf("season %q is refreshable but has no source url", cfg.Label)
		}
		out = append(out, cfg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one season is required")
	}
	if err := season.ValidateAll(out); err != nil {
		return nil, err
	}
	return out, nil
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

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
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
