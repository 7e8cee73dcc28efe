package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string

	LLMProvider        string
	LLMModel           string
	LLMExtractionModel string
	LLMAnalysisModel   string
	LLMChatModel       string
	LLMBaseURL         string
	OpenAIAPIKey       string
	GeminiAPIKey       string
	GoogleCloudProject string
	GoogleCloudRegion  string
	LLMMaxRetries      int
	ModelTimeout       time.Duration

	AnalysisRepairAttempts int
	PersonasFile           string
	ExtractionMode         string
	MaxUploadBytes         int64

	SearchProvider string
	DatastoreID    string
	SearchLocation string
	SearchTimeout  time.Duration
	RAGConcurrency int

	HistoryStore string
	DatabaseURL  string
	SQLitePath   string
	StoreTimeout time.Duration

	ArchiveStore   string
	LocalStoreDir  string
	AWSRegion      string
	S3Bucket       string
	S3Prefix       string
	SSEKMSKeyID    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	RateLimitAnalyzePerMin int
	RateLimitChatPerMin    int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	historyStore := normalizeHistoryStore(getEnv("HISTORY_STORE", defaultHistoryStore(dbURL)))

	if env == "production" && historyStore == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	llmModel := getEnv("LLM_MODEL", "gemini-2.5-pro")

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		Env:             env,

		LLMProvider:        normalizeProvider(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:           llmModel,
		LLMExtractionModel: getEnv("LLM_EXTRACTION_MODEL", "gemini-2.5-flash"),
		LLMAnalysisModel:   getEnv("LLM_ANALYSIS_MODEL", llmModel),
		LLMChatModel:       getEnv("LLM_CHAT_MODEL", llmModel),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GoogleCloudProject: getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudRegion:  getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		LLMMaxRetries:      getInt("LLM_MAX_RETRIES", 0),
		ModelTimeout:       getDuration("MODEL_TIMEOUT", 120*time.Second),

		AnalysisRepairAttempts: getInt("ANALYSIS_REPAIR_ATTEMPTS", 0),
		PersonasFile:           getEnv("PERSONAS_FILE", ""),
		ExtractionMode:         normalizeExtractionMode(getEnv("EXTRACTION_MODE", "model")),
		MaxUploadBytes:         int64(getInt("MAX_UPLOAD_BYTES", 20<<20)),

		SearchProvider: normalizeSearchProvider(getEnv("SEARCH_PROVIDER", defaultSearchProvider())),
		DatastoreID:    getEnv("DATASTORE_ID", ""),
		SearchLocation: getEnv("SEARCH_LOCATION", "global"),
		SearchTimeout:  getDuration("SEARCH_TIMEOUT", 10*time.Second),
		RAGConcurrency: getInt("RAG_CONCURRENCY", 1),

		HistoryStore: historyStore,
		DatabaseURL:  dbURL,
		SQLitePath:   getEnv("SQLITE_PATH", "./data/lexiguard.db"),
		StoreTimeout: getDuration("STORE_TIMEOUT", 5*time.Second),

		ArchiveStore:   normalizeArchiveStore(getEnv("ARCHIVE_STORE", "none")),
		LocalStoreDir:  getEnv("LOCAL_STORE_DIR", "./data/uploads"),
		AWSRegion:      getEnv("AWS_REGION", ""),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Prefix:       getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:    getEnv("SSE_KMS_KEY_ID", ""),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "lexiguard-uploads"),
		MinioUseSSL:    getBool("MINIO_USE_SSL", false),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),

		RateLimitAnalyzePerMin: getInt("RATE_LIMIT_ANALYZE_PER_MIN", 10),
		RateLimitChatPerMin:    getInt("RATE_LIMIT_CHAT_PER_MIN", 60),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config %s invalid bool: %v", key, err)
		return def
	}
	return val
}

// getDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return def
		}
		return time.Duration(secs) * time.Second
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration: %q", key, raw)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "openai-compatible":
		return "compat"
	default:
		return v
	}
}

func normalizeExtractionMode(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "auto") {
		return "auto"
	}
	return "model"
}

func defaultSearchProvider() string {
	if os.Getenv("DATASTORE_ID") != "" {
		return "discovery"
	}
	return "none"
}

func normalizeSearchProvider(raw string) string {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "vertex":
		return "discovery"
	case "pg":
		return "postgres"
	default:
		return v
	}
}

func defaultHistoryStore(dbURL string) string {
	if dbURL != "" {
		return "postgres"
	}
	return "memory"
}

func normalizeHistoryStore(raw string) string {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "pg":
		return "postgres"
	default:
		return v
	}
}

func normalizeArchiveStore(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

var allowedValues = []struct {
	key     string
	allowed []string
	value   func(Config) string
}{
	{"LLM_PROVIDER", []string{"gemini", "openai", "compat", "none"}, func(c Config) string { return c.LLMProvider }},
	{"SEARCH_PROVIDER", []string{"discovery", "postgres", "none"}, func(c Config) string { return c.SearchProvider }},
	{"HISTORY_STORE", []string{"memory", "postgres", "sqlite", "none"}, func(c Config) string { return c.HistoryStore }},
	{"ARCHIVE_STORE", []string{"none", "local", "s3", "minio"}, func(c Config) string { return c.ArchiveStore }},
}

// Validate rejects unrecognized provider and store names. Empty values
// select the defaults.
func (c Config) Validate() error {
	var problems []string
	for _, a := range allowedValues {
		v := a.value(c)
		if v == "" || slices.Contains(a.allowed, v) {
			continue
		}
		problems = append(problems, fmt.Sprintf("%s=%q (want one of %s)", a.key, v, strings.Join(a.allowed, ", ")))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
