package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/clublocker/internal/platform/logging"
)

const (
	SnapshotBackendFile     = "file"
	SnapshotBackendPostgres = "postgres"
	SnapshotBackendSQLite   = "sqlite"
)

// Config stores runtime configuration for the API server and the CLI.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	CORSAllowedOrigins          []string
	LogLevel                    logging.Level
	SnapshotBackend             string
	SnapshotDir                 string
	SnapshotLocation            *time.Location
	SnapshotPersistPartial      bool
	DBURL                       string
	DBDisablePreparedBinary     bool
	CacheTTL                    time.Duration
	ClubLockerBaseURL           string
	ClubLockerTimeout           time.Duration
	ClubLockerMaxRetries        int
	ClubLockerRetryBackoff      time.Duration
	ClubLockerWorkers           int
	ClubLockerSweepTimeout      time.Duration
	ClubLockerRankingGroup      int
	ClubLockerRankingDivisions  []int
	ClubLockerMaxRankingPages   int
	ClubLockerCircuitEnabled    bool
	ClubLockerCircuitFailures   int
	ClubLockerCircuitOpenFor    time.Duration
	ClubLockerCircuitHalfOpenRq int
	DivisionLabels              map[int]string
	PprofEnabled                bool
	PprofAddr                   string
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	UptraceLogsLevel            logging.Level
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
}

// Load reads the environment, after merging an optional .env file (ENV_FILE
// overrides the path). Variables already set in the environment win.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	snapshotBackend, err := parseSnapshotBackend(getEnv("SNAPSHOT_BACKEND", SnapshotBackendFile))
	if err != nil {
		return Config{}, err
	}
	snapshotDir := strings.TrimSpace(getEnv("SNAPSHOT_DIR", "data"))
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	switch snapshotBackend {
	case SnapshotBackendPostgres:
		if dbURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when SNAPSHOT_BACKEND=postgres")
		}
	case SnapshotBackendSQLite:
		if dbURL == "" {
			dbURL = "clublocker.db"
		}
	}
	snapshotLocation, err := time.LoadLocation(getEnv("SNAPSHOT_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_TIMEZONE: %w", err)
	}
	snapshotPersistPartial, err := strconv.ParseBool(getEnv("SNAPSHOT_PERSIST_PARTIAL", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_PERSIST_PARTIAL: %w", err)
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	clubLockerTimeout, err := time.ParseDuration(getEnv("CLUBLOCKER_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_TIMEOUT: %w", err)
	}
	if clubLockerTimeout <= 0 {
		return Config{}, fmt.Errorf("CLUBLOCKER_TIMEOUT must be > 0")
	}
	clubLockerMaxRetries, err := getEnvAsInt("CLUBLOCKER_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_MAX_RETRIES: %w", err)
	}
	if clubLockerMaxRetries < 0 {
		return Config{}, fmt.Errorf("CLUBLOCKER_MAX_RETRIES must be >= 0")
	}
	clubLockerRetryBackoff, err := time.ParseDuration(getEnv("CLUBLOCKER_RETRY_BACKOFF", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_RETRY_BACKOFF: %w", err)
	}
	if clubLockerRetryBackoff < 0 {
		return Config{}, fmt.Errorf("CLUBLOCKER_RETRY_BACKOFF must be >= 0")
	}
	clubLockerWorkers, err := getEnvAsInt("CLUBLOCKER_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_WORKERS: %w", err)
	}
	if clubLockerWorkers < 1 {
		return Config{}, fmt.Errorf("CLUBLOCKER_WORKERS must be >= 1")
	}
	clubLockerSweepTimeout, err := time.ParseDuration(getEnv("CLUBLOCKER_SWEEP_TIMEOUT", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_SWEEP_TIMEOUT: %w", err)
	}
	if clubLockerSweepTimeout <= 0 {
		return Config{}, fmt.Errorf("CLUBLOCKER_SWEEP_TIMEOUT must be > 0")
	}
	clubLockerRankingGroup, err := getEnvAsInt("CLUBLOCKER_RANKING_GROUP", 9)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_RANKING_GROUP: %w", err)
	}
	clubLockerRankingDivisions, err := parseIntList(getEnv("CLUBLOCKER_RANKING_DIVISIONS", "2,1"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_RANKING_DIVISIONS: %w", err)
	}
	if len(clubLockerRankingDivisions) == 0 {
		return Config{}, fmt.Errorf("CLUBLOCKER_RANKING_DIVISIONS cannot be empty")
	}
	clubLockerMaxRankingPages, err := getEnvAsInt("CLUBLOCKER_MAX_RANKING_PAGES", 19)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_MAX_RANKING_PAGES: %w", err)
	}
	if clubLockerMaxRankingPages < 1 {
		return Config{}, fmt.Errorf("CLUBLOCKER_MAX_RANKING_PAGES must be >= 1")
	}
	clubLockerCircuitEnabled, err := strconv.ParseBool(getEnv("CLUBLOCKER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_CIRCUIT_ENABLED: %w", err)
	}
	clubLockerCircuitFailures, err := getEnvAsInt("CLUBLOCKER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if clubLockerCircuitFailures < 1 {
		return Config{}, fmt.Errorf("CLUBLOCKER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	clubLockerCircuitOpenFor, err := time.ParseDuration(getEnv("CLUBLOCKER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if clubLockerCircuitOpenFor <= 0 {
		return Config{}, fmt.Errorf("CLUBLOCKER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	clubLockerCircuitHalfOpenRq, err := getEnvAsInt("CLUBLOCKER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBLOCKER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if clubLockerCircuitHalfOpenRq < 1 {
		return Config{}, fmt.Errorf("CLUBLOCKER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	divisionLabels, err := parseLabelMap(getEnv("DIVISION_LABELS", "1:All Men,2:All Women"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DIVISION_LABELS: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
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
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

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
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "clublocker"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                 readTimeout,
		WriteTimeout:                writeTimeout,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		SnapshotBackend:             snapshotBackend,
		SnapshotDir:                 snapshotDir,
		SnapshotLocation:            snapshotLocation,
		SnapshotPersistPartial:      snapshotPersistPartial,
		DBURL:                       dbURL,
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		CacheTTL:                    cacheTTL,
		ClubLockerBaseURL:           strings.TrimSpace(getEnv("CLUBLOCKER_BASE_URL", "https://api.ussquash.com/resources")),
		ClubLockerTimeout:           clubLockerTimeout,
		ClubLockerMaxRetries:        clubLockerMaxRetries,
		ClubLockerRetryBackoff:      clubLockerRetryBackoff,
		ClubLockerWorkers:           clubLockerWorkers,
		ClubLockerSweepTimeout:      clubLockerSweepTimeout,
		ClubLockerRankingGroup:      clubLockerRankingGroup,
		ClubLockerRankingDivisions:  clubLockerRankingDivisions,
		ClubLockerMaxRankingPages:   clubLockerMaxRankingPages,
		ClubLockerCircuitEnabled:    clubLockerCircuitEnabled,
		ClubLockerCircuitFailures:   clubLockerCircuitFailures,
		ClubLockerCircuitOpenFor:    clubLockerCircuitOpenFor,
		ClubLockerCircuitHalfOpenRq: clubLockerCircuitHalfOpenRq,
		DivisionLabels:              divisionLabels,
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		UptraceLogsLevel:            parseLogLevel(getEnv("UPTRACE_LOGS_LEVEL", "warn")),
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.SnapshotBackend == SnapshotBackendFile && cfg.SnapshotDir == "" {
		return Config{}, fmt.Errorf("SNAPSHOT_DIR cannot be empty when SNAPSHOT_BACKEND=file")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
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

func parseIntList(raw string) ([]int, error) {
	items := splitCSV(raw)
	out := make([]int, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		value, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %d", value)
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out, nil
}

// parseLabelMap reads "1:All Men,2:All Women" into a division id -> label map.
func parseLabelMap(raw string) (map[int]string, error) {
	out := make(map[int]string)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected division_id:label", item)
		}
		id, err := strconv.Atoi(strings.TrimSpace(segments[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid division id in item %q: %w", item, err)
		}
		label := strings.TrimSpace(segments[1])
		if label == "" {
			return nil, fmt.Errorf("empty label in item %q", item)
		}
		out[id] = label
	}
	return out, nil
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

func parseSnapshotBackend(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case SnapshotBackendFile, SnapshotBackendPostgres, SnapshotBackendSQLite:
		return value, nil
	default:
		return "", fmt.Errorf("invalid SNAPSHOT_BACKEND %q: valid values are %s, %s, %s", v, SnapshotBackendFile, SnapshotBackendPostgres, SnapshotBackendSQLite)
	}
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
