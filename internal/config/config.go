package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/riskibarqy/team-gamelog/internal/platform/resilience"
)

// Config stores runtime configuration for the service and the report CLI.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	NBAStatsBaseURL               string
	NBAStatsCircuitEnabled        bool
	NBAStatsCircuitFailureCount   int
	NBAStatsCircuitOpenTimeout    time.Duration
	NBAStatsCircuitHalfOpenMaxReq int

	FetchRetries       int
	FetchBackoffBase   float64
	FetchTimeout       time.Duration
	CacheDir           string
	UseCacheOnFailure  bool
	RemoteCacheBaseURL string

	DataDir           string
	TeamDirectoryFile string
	TeamDirectoryTTL  time.Duration
	LastTeamAbbr      string
	LastTeamName      string
	DotenvPath        string

	WarmupEnabled bool
	WarmupTeams   []string
	WarmupWorkers int
	ScheduleCron  string
	ScheduleTeams []string

	UptraceEnabled         bool
	UptraceDSN             string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        strings.TrimSpace(getEnv("APP_SERVICE_NAME", "team-gamelog-api")),
		ServiceVersion:     strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	cfg.ReadTimeout = readTimeout

	cfg.NBAStatsBaseURL = strings.TrimSpace(getEnv("NBA_STATS_BASE_URL", "https://stats.nba.com/stats"))
	cfg.NBAStatsCircuitEnabled, err = strconv.ParseBool(getEnv("NBA_STATS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_ENABLED: %w", err)
	}
	cfg.NBAStatsCircuitFailureCount, err = getEnvAsInt("NBA_STATS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.NBAStatsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("NBA_STATS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cfg.NBAStatsCircuitOpenTimeout, err = time.ParseDuration(getEnv("NBA_STATS_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.NBAStatsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("NBA_STATS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cfg.NBAStatsCircuitHalfOpenMaxReq, err = getEnvAsInt("NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.NBAStatsCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("NBA_STATS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.FetchRetries, err = getEnvAsInt("FETCH_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_RETRIES: %w", err)
	}
	if cfg.FetchRetries < 1 {
		return Config{}, fmt.Errorf("FETCH_RETRIES must be >= 1")
	}
	cfg.FetchBackoffBase, err = strconv.ParseFloat(strings.TrimSpace(getEnv("FETCH_BACKOFF_BASE", "2.0")), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_BACKOFF_BASE: %w", err)
	}
	if cfg.FetchBackoffBase <= 0 {
		return Config{}, fmt.Errorf("FETCH_BACKOFF_BASE must be > 0")
	}
	cfg.FetchTimeout, err = time.ParseDuration(getEnv("FETCH_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_TIMEOUT: %w", err)
	}
	if cfg.FetchTimeout <= 0 {
		return Config{}, fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	cfg.CacheDir = strings.TrimSpace(getEnvAllowEmpty("CACHE_DIR", "data/cache"))
	cfg.UseCacheOnFailure, err = strconv.ParseBool(getEnv("USE_CACHE_ON_FAILURE", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse USE_CACHE_ON_FAILURE: %w", err)
	}
	cfg.RemoteCacheBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("REMOTE_CACHE_BASE_URL", "")), "/")
	if cfg.RemoteCacheBaseURL != "" {
		if err := validateHTTPURL(cfg.RemoteCacheBaseURL); err != nil {
			return Config{}, fmt.Errorf("invalid REMOTE_CACHE_BASE_URL: %w", err)
		}
	}

	// A response must outlive every retry and the cache fallbacks behind it.
	cfg.WriteTimeout = cfg.FetchBudget() + writeTimeoutHeadroom
	if raw := strings.TrimSpace(os.Getenv("APP_WRITE_TIMEOUT")); raw != "" {
		cfg.WriteTimeout, err = time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
		}
		if cfg.WriteTimeout < cfg.FetchBudget() {
			return Config{}, fmt.Errorf("APP_WRITE_TIMEOUT=%s is shorter than the fetch budget %s", cfg.WriteTimeout, cfg.FetchBudget())
		}
	}

	cfg.DataDir = strings.TrimSpace(getEnv("DATA_DIR", "data"))
	cfg.TeamDirectoryFile = strings.TrimSpace(getEnv("TEAM_DIRECTORY_FILE", ""))
	cfg.TeamDirectoryTTL, err = time.ParseDuration(getEnv("TEAM_DIRECTORY_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_DIRECTORY_TTL: %w", err)
	}
	if cfg.TeamDirectoryTTL <= 0 {
		return Config{}, fmt.Errorf("TEAM_DIRECTORY_TTL must be > 0")
	}
	cfg.LastTeamAbbr = strings.ToUpper(strings.TrimSpace(getEnv("LAST_TEAM_ABBR", "GSW")))
	cfg.LastTeamName = strings.TrimSpace(getEnv("LAST_TEAM_NAME", "Golden State Warriors"))
	cfg.DotenvPath = strings.TrimSpace(getEnvAllowEmpty("DOTENV_PATH", ".env"))

	cfg.WarmupEnabled, err = strconv.ParseBool(getEnv("WARMUP_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMUP_ENABLED: %w", err)
	}
	cfg.WarmupTeams = splitCSV(getEnv("WARMUP_TEAMS", ""))
	cfg.WarmupWorkers, err = getEnvAsInt("WARMUP_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse WARMUP_WORKERS: %w", err)
	}
	if cfg.WarmupWorkers < 1 {
		return Config{}, fmt.Errorf("WARMUP_WORKERS must be >= 1")
	}
	cfg.ScheduleCron = strings.TrimSpace(getEnv("SCHEDULE_CRON", ""))
	cfg.ScheduleTeams = splitCSV(getEnv("SCHEDULE_TEAMS", ""))

	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeUploadRate, err = time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	return cfg, nil
}

const writeTimeoutHeadroom = 10 * time.Second

// FetchBudget is the longest one game log fetch can take: every retry running to its
// timeout, the waits between them, then the cache fallbacks.
func (c Config) FetchBudget() time.Duration {
	backoff := resilience.ExponentialBackoff(c.FetchBackoffBase)
	return resilience.RetryBudget(c.FetchRetries, c.FetchTimeout, backoff) + resilience.FallbackBudget
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

// getEnvAllowEmpty distinguishes an unset variable from one set to the empty string,
// which disables the feature it configures.
func getEnvAllowEmpty(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
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

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q; expected http or https", parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("empty host")
	}
	return nil
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
