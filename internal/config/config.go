// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tweetmood/internal/domain/label"
)

// Collect write policies
const (
	CollectOverwrite = "overwrite"
	CollectResume    = "resume"
)

// Classifier backends
const (
	BackendHTTP = "http"
	BackendONNX = "onnx"
)

// TopicLanguageSource selects the batch's own language for topic lookup
const TopicLanguageSource = "source"

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Paths       PathsConfig
	Twitter     TwitterConfig
	Collect     CollectConfig
	HuggingFace HuggingFaceConfig
	Translate   TranslateConfig
	Classify    ClassifyConfig
	ONNX        ONNXConfig
	Summary     SummaryConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	Server      ServerConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Environment string
	LogLevel    string
	Progress    bool
}

// PathsConfig holds the stage directories
type PathsConfig struct {
	TweetsDir       string
	TranslationsDir string
	ResultsDir      string
}

// TwitterConfig holds search API configuration
type TwitterConfig struct {
	BearerToken string
	Host        string
	Timeout     time.Duration
}

// CollectConfig holds collector configuration
type CollectConfig struct {
	Mode       string
	MaxResults int
	Dedupe     bool
}

// HuggingFaceConfig holds inference API configuration
type HuggingFaceConfig struct {
	URL          string
	Token        string
	Timeout      time.Duration
	WaitForModel bool
}

// TranslateConfig holds translator configuration
type TranslateConfig struct {
	// ModelTemplate is formatted with the source language code
	ModelTemplate string
}

// ClassifyConfig holds classifier configuration
type ClassifyConfig struct {
	Backend    string
	Model      string
	Labels     string
	MultiLabel bool
}

// ONNXConfig holds the local NLI backend configuration
type ONNXConfig struct {
	LibraryPath        string
	ModelPath          string
	TokenizerPath      string
	HypothesisTemplate string
	EntailmentIndex    int
	ContradictionIndex int
}

// SummaryConfig holds aggregator configuration
type SummaryConfig struct {
	TopicLanguage string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration. An empty URL disables stage events.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// Enabled reports whether stage events are published
func (c NATSConfig) Enabled() bool { return c.URL != "" }

// RedisConfig holds the seen-tweet store configuration. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	SeenSet  string
}

// Enabled reports whether the seen-tweet store is configured
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// ServerConfig holds report server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// Load loads configuration from a .env file, if present, and the environment
func Load() (Config, error) {
	// A missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds configuration from environment variables only
func FromEnv() (Config, error) {
	config := Config{
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Progress:    getEnvAsBool("PROGRESS", true),
		},
		Paths: PathsConfig{
			TweetsDir:       getEnv("TWEETS_DIR", "./tweets"),
			TranslationsDir: getEnv("TRANSLATIONS_DIR", "./translations"),
			ResultsDir:      getEnv("RESULTS_DIR", "./results"),
		},
		Twitter: TwitterConfig{
			BearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
			Host:        getEnv("TWITTER_API_HOST", "https://api.twitter.com"),
			Timeout:     getEnvAsDuration("TWITTER_TIMEOUT", 30*time.Second),
		},
		Collect: CollectConfig{
			Mode:       strings.ToLower(getEnv("COLLECT_MODE", CollectOverwrite)),
			MaxResults: getEnvAsInt("COLLECT_MAX_RESULTS", 10),
			Dedupe:     getEnvAsBool("COLLECT_DEDUPE", true),
		},
		HuggingFace: HuggingFaceConfig{
			URL:          strings.TrimRight(getEnv("HF_API_URL", "https://api-inference.huggingface.co"), "/"),
			Token:        getEnv("HF_API_TOKEN", ""),
			Timeout:      getEnvAsDuration("HF_TIMEOUT", 2*time.Minute),
			WaitForModel: getEnvAsBool("HF_WAIT_FOR_MODEL", true),
		},
		Translate: TranslateConfig{
			ModelTemplate: getEnv("TRANSLATE_MODEL_TEMPLATE", "Helsinki-NLP/opus-mt-%s-en"),
		},
		Classify: ClassifyConfig{
			Backend:    strings.ToLower(getEnv("CLASSIFY_BACKEND", BackendHTTP)),
			Model:      getEnv("CLASSIFY_MODEL", "facebook/bart-large-mnli"),
			Labels:     getEnv("CLASSIFY_LABELS", label.WarEmotions),
			MultiLabel: getEnvAsBool("CLASSIFY_MULTI_LABEL", false),
		},
		ONNX: ONNXConfig{
			LibraryPath:        getEnv("ONNX_LIBRARY_PATH", "/usr/local/lib/libonnxruntime.so"),
			ModelPath:          getEnv("ONNX_MODEL_PATH", "./models/bart-large-mnli/model.onnx"),
			TokenizerPath:      getEnv("ONNX_TOKENIZER_PATH", "./models/bart-large-mnli/tokenizer.json"),
			HypothesisTemplate: getEnv("ONNX_HYPOTHESIS_TEMPLATE", "This example is {}."),
			EntailmentIndex:    getEnvAsInt("ONNX_ENTAILMENT_INDEX", 2),
			ContradictionIndex: getEnvAsInt("ONNX_CONTRADICTION_INDEX", 0),
		},
		Summary: SummaryConfig{
			TopicLanguage: strings.ToLower(getEnv("SUMMARY_TOPIC_LANGUAGE", "pl")),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "tweetmood"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 1),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			SeenSet:  getEnv("REDIS_SEEN_SET", "tweetmood:seen"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	switch config.Collect.Mode {
	case CollectOverwrite, CollectResume:
	default:
		return fmt.Errorf("unknown COLLECT_MODE %q", config.Collect.Mode)
	}

	// The recent search endpoint accepts 10..100
	if config.Collect.MaxResults < 10 || config.Collect.MaxResults > 100 {
		return fmt.Errorf("COLLECT_MAX_RESULTS must be between 10 and 100, got %d", config.Collect.MaxResults)
	}

	switch config.Classify.Backend {
	case BackendHTTP, BackendONNX:
	default:
		return fmt.Errorf("unknown CLASSIFY_BACKEND %q", config.Classify.Backend)
	}

	if _, err := label.ByName(config.Classify.Labels); err != nil {
		return fmt.Errorf("CLASSIFY_LABELS: %w", err)
	}

	if !strings.Contains(config.Translate.ModelTemplate, "%s") {
		return fmt.Errorf("TRANSLATE_MODEL_TEMPLATE must contain %%s")
	}

	if config.Summary.TopicLanguage != TopicLanguageSource && len(config.Summary.TopicLanguage) != 2 {
		return fmt.Errorf("SUMMARY_TOPIC_LANGUAGE must be a language code or %q", TopicLanguageSource)
	}

	return nil
}

// ValidateCollector checks settings only the collector needs
func (c Config) ValidateCollector() error {
	if c.Twitter.BearerToken == "" {
		return fmt.Errorf("TWITTER_BEARER_TOKEN must be set")
	}
	return nil
}

// LabelSchema returns the configured label schema
func (c Config) LabelSchema() (label.Schema, error) {
	return label.ByName(c.Classify.Labels)
}

// ConnString builds the Postgres connection string
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
