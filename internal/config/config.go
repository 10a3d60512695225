// Package config reads the process configuration once at startup. Values
// are immutable afterwards; per-request overrides are threaded explicitly
// by the callers that allow them.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"repohealth/internal/merge"
)

// Model defaults per provider.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
)

// Cache defaults for generated reports keyed by snapshot fingerprint.
const (
	DefaultCacheEntries = 256
	DefaultCacheTTL     = 15 * time.Minute
)

const defaultTimeoutSeconds = 60

type Config struct {
	Port string
	Env  string

	// Mode selects the enhancement topology: hybrid, auto, or a single
	// provider name. Normalization happens at plan resolution.
	Mode string
	// LocalWeight is the anchoring weight, already clamped to its bounds.
	LocalWeight float64
	// ProviderTimeout bounds one provider round trip.
	ProviderTimeout time.Duration

	Cache     CacheConfig
	Providers ProvidersConfig
	Archive   ArchiveConfig
}

type CacheConfig struct {
	Entries int
	TTL     time.Duration
}

type ProviderConfig struct {
	APIKey string
	Model  string
	// RPS/Burst feed the client rate limiter; zero disables limiting.
	RPS   float64
	Burst int
}

// Configured reports whether the provider has a credential.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

type ProvidersConfig struct {
	Gemini    ProviderConfig
	Groq      ProviderConfig
	Anthropic ProviderConfig
}

type ArchiveConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FromEnv reads configuration from the environment, loading a .env file
// first if one exists. It never touches the command line, so it is safe to
// call from CLIs that own their own flags.
func FromEnv() *Config {
	_ = godotenv.Load()

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = ":8080"
	} else if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	mode := strings.TrimSpace(os.Getenv("REPORT_AI_MODE"))
	if mode == "" {
		mode = "auto"
	}

	weight := merge.NewWeights(parseFloat(os.Getenv("REPORT_LOCAL_WEIGHT"), merge.DefaultLocalWeight))

	return &Config{
		Port:            port,
		Env:             env,
		Mode:            mode,
		LocalWeight:     weight.Local,
		ProviderTimeout: time.Duration(parseInt(os.Getenv("PROVIDER_TIMEOUT_SECONDS"), defaultTimeoutSeconds)) * time.Second,
		Cache: CacheConfig{
			Entries: parseInt(os.Getenv("REPORT_CACHE_ENTRIES"), DefaultCacheEntries),
			TTL:     time.Duration(parseInt(os.Getenv("REPORT_CACHE_TTL_SECONDS"), int(DefaultCacheTTL/time.Second))) * time.Second,
		},
		Providers: ProvidersConfig{
			Gemini:    loadProvider("GEMINI", DefaultGeminiModel),
			Groq:      loadProvider("GROQ", DefaultGroqModel),
			Anthropic: loadProvider("ANTHROPIC", DefaultAnthropicModel),
		},
		Archive: loadArchive(env),
	}
}

// Load is FromEnv plus the server's -port flag.
func Load() (*Config, error) {
	port := flag.String("port", "", "server port (overrides PORT)")
	flag.Parse()

	cfg := FromEnv()
	if p := strings.TrimSpace(*port); p != "" {
		if !strings.HasPrefix(p, ":") {
			p = ":" + p
		}
		cfg.Port = p
	}
	return cfg, nil
}

func loadProvider(prefix, defaultModel string) ProviderConfig {
	return ProviderConfig{
		APIKey: strings.TrimSpace(os.Getenv(prefix + "_API_KEY")),
		Model:  firstNonEmpty(strings.TrimSpace(os.Getenv(prefix+"_MODEL")), defaultModel),
		RPS:    parseFloat(os.Getenv(prefix+"_RPS"), 0),
		Burst:  parseInt(os.Getenv(prefix+"_BURST"), 0),
	}
}

func loadArchive(env string) ArchiveConfig {
	return ArchiveConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "repohealth-reports"),
		UseSSL:    resolveUseSSL(env),
	}
}

func resolveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARCHIVE_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseFloat(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func parseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
