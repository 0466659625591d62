package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	OCR        OCRConfig
	Classifier StageConfig
	Extractor  StageConfig
	Pipeline   PipelineConfig
	S3         S3Config
	Doctype    DoctypeConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OCRConfig holds external OCR provider settings.
type OCRConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ProviderConfig holds settings for a single LLM provider pass.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	Level        int    `mapstructure:"level"`
}

// StageConfig holds primary/secondary provider blocks for one pipeline
// stage (classification or extraction). The secondary block is optional.
type StageConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not
// configured.
func (s *StageConfig) SecondaryConfig() *ProviderConfig {
	if s.Secondary.Provider != "" {
		return &s.Secondary
	}
	return nil
}

// PipelineConfig holds per-document processing settings.
type PipelineConfig struct {
	PageConcurrency int `mapstructure:"page_concurrency"`
}

// S3Config holds optional source-file archive settings. Archiving is
// disabled when Bucket is empty.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Enabled reports whether archive uploads are configured.
func (s *S3Config) Enabled() bool { return s.Bucket != "" }

// DoctypeConfig points at an optional document-type table override.
type DoctypeConfig struct {
	TablePath string `mapstructure:"table_path"`
}

// Load reads configuration from environment variables with the KYCDOCS_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KYCDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 100)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// OCR defaults
	v.SetDefault("ocr.endpoint", "")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout_secs", 60)

	// Classifier defaults
	v.SetDefault("classifier.primary.provider", "openai")
	v.SetDefault("classifier.primary.api_key", "")
	v.SetDefault("classifier.primary.default_model", "gpt-4o")
	v.SetDefault("classifier.primary.max_retries", 2)
	v.SetDefault("classifier.primary.timeout_secs", 60)
	v.SetDefault("classifier.primary.level", 1)
	v.SetDefault("classifier.secondary.provider", "")
	v.SetDefault("classifier.secondary.api_key", "")
	v.SetDefault("classifier.secondary.default_model", "")
	v.SetDefault("classifier.secondary.max_retries", 2)
	v.SetDefault("classifier.secondary.timeout_secs", 60)
	v.SetDefault("classifier.secondary.level", 2)

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "openai")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "gpt-4o")
	v.SetDefault("extractor.primary.max_retries", 2)
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.primary.level", 1)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.max_retries", 2)
	v.SetDefault("extractor.secondary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.level", 1)

	// Pipeline defaults
	v.SetDefault("pipeline.page_concurrency", 4)

	// S3 defaults (archiving disabled unless a bucket is set)
	v.SetDefault("s3.region", "me-central-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Doctype defaults (embedded table unless overridden)
	v.SetDefault("doctype.table_path", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "KYCDOCS_SERVER_PORT",
		"server.read_timeout":                "KYCDOCS_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "KYCDOCS_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "KYCDOCS_SERVER_ENVIRONMENT",
		"server.max_upload_mb":               "KYCDOCS_SERVER_MAX_UPLOAD_MB",
		"log.level":                          "KYCDOCS_LOG_LEVEL",
		"log.format":                         "KYCDOCS_LOG_FORMAT",
		"cors.allowed_origins":               "KYCDOCS_CORS_ALLOWED_ORIGINS",
		"ocr.endpoint":                       "KYCDOCS_OCR_ENDPOINT",
		"ocr.api_key":                        "KYCDOCS_OCR_API_KEY",
		"ocr.timeout_secs":                   "KYCDOCS_OCR_TIMEOUT_SECS",
		"classifier.primary.provider":        "KYCDOCS_CLASSIFIER_PRIMARY_PROVIDER",
		"classifier.primary.api_key":         "KYCDOCS_CLASSIFIER_PRIMARY_API_KEY",
		"classifier.primary.default_model":   "KYCDOCS_CLASSIFIER_PRIMARY_DEFAULT_MODEL",
		"classifier.primary.max_retries":     "KYCDOCS_CLASSIFIER_PRIMARY_MAX_RETRIES",
		"classifier.primary.timeout_secs":    "KYCDOCS_CLASSIFIER_PRIMARY_TIMEOUT_SECS",
		"classifier.primary.level":           "KYCDOCS_CLASSIFIER_PRIMARY_LEVEL",
		"classifier.secondary.provider":      "KYCDOCS_CLASSIFIER_SECONDARY_PROVIDER",
		"classifier.secondary.api_key":       "KYCDOCS_CLASSIFIER_SECONDARY_API_KEY",
		"classifier.secondary.default_model": "KYCDOCS_CLASSIFIER_SECONDARY_DEFAULT_MODEL",
		"classifier.secondary.max_retries":   "KYCDOCS_CLASSIFIER_SECONDARY_MAX_RETRIES",
		"classifier.secondary.timeout_secs":  "KYCDOCS_CLASSIFIER_SECONDARY_TIMEOUT_SECS",
		"classifier.secondary.level":         "KYCDOCS_CLASSIFIER_SECONDARY_LEVEL",
		"extractor.primary.provider":         "KYCDOCS_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":          "KYCDOCS_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":    "KYCDOCS_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.max_retries":      "KYCDOCS_EXTRACTOR_PRIMARY_MAX_RETRIES",
		"extractor.primary.timeout_secs":     "KYCDOCS_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.primary.level":            "KYCDOCS_EXTRACTOR_PRIMARY_LEVEL",
		"extractor.secondary.provider":       "KYCDOCS_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":        "KYCDOCS_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model":  "KYCDOCS_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.max_retries":    "KYCDOCS_EXTRACTOR_SECONDARY_MAX_RETRIES",
		"extractor.secondary.timeout_secs":   "KYCDOCS_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extractor.secondary.level":          "KYCDOCS_EXTRACTOR_SECONDARY_LEVEL",
		"pipeline.page_concurrency":          "KYCDOCS_PIPELINE_PAGE_CONCURRENCY",
		"s3.region":                          "KYCDOCS_S3_REGION",
		"s3.bucket":                          "KYCDOCS_S3_BUCKET",
		"s3.endpoint":                        "KYCDOCS_S3_ENDPOINT",
		"s3.access_key":                      "KYCDOCS_S3_ACCESS_KEY",
		"s3.secret_key":                      "KYCDOCS_S3_SECRET_KEY",
		"doctype.table_path":                 "KYCDOCS_DOCTYPE_TABLE_PATH",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if
	// KYCDOCS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("KYCDOCS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: strings.Split(v.GetString("cors.allowed_origins"), ","),
	}
	cfg.OCR = OCRConfig{
		Endpoint:    v.GetString("ocr.endpoint"),
		APIKey:      v.GetString("ocr.api_key"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.Classifier = StageConfig{
		Primary:   providerConfig(v, "classifier.primary"),
		Secondary: providerConfig(v, "classifier.secondary"),
	}
	cfg.Extractor = StageConfig{
		Primary:   providerConfig(v, "extractor.primary"),
		Secondary: providerConfig(v, "extractor.secondary"),
	}
	cfg.Pipeline = PipelineConfig{
		PageConcurrency: v.GetInt("pipeline.page_concurrency"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Doctype = DoctypeConfig{
		TablePath: v.GetString("doctype.table_path"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		Level:        v.GetInt(prefix + ".level"),
	}
}
