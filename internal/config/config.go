package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port       string
	Env        string
	AppVersion string
	LogLevel   string

	// HTTP
	RequestTimeout time.Duration
	ProxyHeader    string
	TrustedProxies []string

	// Gemini
	GeminiAPIKey         string
	GoogleCloudProject   string
	GoogleCloudLocation  string
	CompletionModel      string
	FallbackModel        string
	EmbeddingModel       string
	EmbeddingDim         int
	CompletionTimeout    time.Duration
	CompletionMaxRetries int
	MaxOutputTokens      int

	// Qdrant retrieval
	QdrantHost              string
	QdrantPort              int
	QdrantCollection        string
	RetrievalTopK           int
	RetrievalScoreThreshold float64
	RetrievalBroaden        bool
	RetrievalTimeout        time.Duration

	// Redis query limiter
	RedisAddr       string
	RedisPassword   string
	UserQueryLimit  int
	UserQueryWindow time.Duration

	// Threat audit
	AuditCSVPath string
	GeoIPDBPath  string
	PublicIPURL  string
	GeoTimeout   time.Duration

	OfficerJWTSecret string

	// Ingestion
	RAGDataDir  string
	RAGFileMask string
}

// Load reads the env file (ENV_FILE, default .env.dev) if present and then
// the process environment. The returned bool reports whether the file was found.
func Load() (*Config, bool) {
	envFile := getEnv("ENV_FILE", ".env.dev")
	loaded := godotenv.Load(envFile) == nil
	return FromEnv(), loaded
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		AppVersion: getEnv("APP_VERSION", "dev"),
		LogLevel:   strings.ToLower(getEnv("LOG_LEVEL", "info")),

		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 0),
		ProxyHeader:    getEnv("PROXY_HEADER", ""),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GoogleCloudProject:   getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:  getEnv("GOOGLE_CLOUD_LOCATION", "asia-southeast1"),
		CompletionModel:      getEnv("COMPLETION_MODEL", "gemini-2.5-flash"),
		FallbackModel:        getEnv("FALLBACK_MODEL", ""),
		EmbeddingModel:       getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingDim:         getEnvAsInt("EMBEDDING_DIM", 768),
		CompletionTimeout:    getEnvAsDuration("COMPLETION_TIMEOUT", 25*time.Second),
		CompletionMaxRetries: getEnvAsInt("COMPLETION_MAX_RETRIES", 0),
		MaxOutputTokens:      getEnvAsInt("MAX_OUTPUT_TOKENS", 1024),

		QdrantHost:              getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:              getEnvAsInt("QDRANT_PORT", 6334),
		QdrantCollection:        getEnv("QDRANT_COLLECTION", "customs_rules"),
		RetrievalTopK:           getEnvAsInt("RETRIEVAL_TOP_K", 4),
		RetrievalScoreThreshold: getEnvAsFloat("RETRIEVAL_SCORE_THRESHOLD", 0.55),
		RetrievalBroaden:        getEnvAsBool("RETRIEVAL_BROADEN", true),
		RetrievalTimeout:        getEnvAsDuration("RETRIEVAL_TIMEOUT", 20*time.Second),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		UserQueryLimit:  getEnvAsInt("USER_QUERY_LIMIT", 60),
		UserQueryWindow: getEnvAsDuration("USER_QUERY_WINDOW", time.Hour),

		AuditCSVPath: getEnv("AUDIT_CSV_PATH", "datastore/appData/threatData.csv"),
		GeoIPDBPath:  getEnv("GEOIP_DB_PATH", "datastore/ragData/GeoLite2-City.mmdb"),
		PublicIPURL:  getEnv("PUBLIC_IP_URL", "https://api.ipify.org"),
		GeoTimeout:   getEnvAsDuration("GEO_TIMEOUT", 5*time.Second),

		OfficerJWTSecret: getEnv("OFFICER_JWT_SECRET", ""),

		RAGDataDir:  getEnv("RAG_DATA_DIR", "datastore/ragData"),
		RAGFileMask: getEnv("RAG_FILE_MASK", "*.txt"),
	}
}

// UseVertex reports whether the Gemini client should target Vertex AI
// instead of the Gemini API.
func (c *Config) UseVertex() bool {
	return c.GeminiAPIKey == "" && c.GoogleCloudProject != ""
}

// RouteTimeout bounds one chat request. Unless REQUEST_TIMEOUT is set it
// covers the longest pipeline: screening, structure detection, extraction
// and the report, each a completion, plus retrieval.
func (c *Config) RouteTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return 4*c.CompletionTimeout + c.RetrievalTimeout
}

// WriteTimeout leaves the server room to write the response after a request
// has used its whole RouteTimeout.
func (c *Config) WriteTimeout() time.Duration {
	return c.RouteTimeout() + 10*time.Second
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
