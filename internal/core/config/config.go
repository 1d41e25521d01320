package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/sentio-lab/sentio/internal/engine"
	"github.com/sentio-lab/sentio/internal/report"
)

// Config represents the top-level application config.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Ingestion  IngestionConfig  `koanf:"ingestion"`
	Analysis   AnalysisConfig   `koanf:"analysis"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type IngestionConfig struct {
	MaxRows           int   `koanf:"max_rows"`
	MaxBytes          int64 `koanf:"max_bytes"`
	WorkerCount       int   `koanf:"worker_count"`
	RetainRaw         bool  `koanf:"retain_raw"`
	RetentionCapacity int   `koanf:"retention_capacity"`
}

type AnalysisConfig struct {
	Granularity      string   `koanf:"granularity"` // day | month
	TopTerms         int      `koanf:"top_terms"`
	SummarySentences int      `koanf:"summary_sentences"`
	LexiconDir       string   `koanf:"lexicon_dir"`
	ExtraStopwords   []string `koanf:"extra_stopwords"`
}

type ClassifierConfig struct {
	Type      string `koanf:"type"` // lexicon | remote
	RemoteURL string `koanf:"remote_url"`
	Timeout   string `koanf:"timeout"` // Go duration, remote only
}

// MetricsConfig carries the externally supplied model-performance figures
// rendered in comprehensive reports. Never computed by the engine.
type MetricsConfig struct {
	Enabled   bool    `koanf:"enabled"`
	Accuracy  float64 `koanf:"accuracy"`
	Precision float64 `koanf:"precision"`
	Recall    float64 `koanf:"recall"`
	F1        float64 `koanf:"f1"`
}

// ModelMetrics converts the config block to the report shape, nil when
// disabled.
func (m MetricsConfig) ModelMetrics() *report.ModelMetrics {
	if !m.Enabled {
		return nil
	}
	return &report.ModelMetrics{
		Accuracy:  m.Accuracy,
		Precision: m.Precision,
		Recall:    m.Recall,
		F1:        m.F1,
	}
}

// RemoteTimeout parses the classifier timeout, falling back to 5s.
func (c ClassifierConfig) RemoteTimeout() time.Duration {
	if c.Timeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Ingestion.MaxRows < 0 {
		return fmt.Errorf("ingestion.max_rows must be >= 0")
	}
	if c.Ingestion.MaxBytes < 0 {
		return fmt.Errorf("ingestion.max_bytes must be >= 0")
	}
	if c.Ingestion.WorkerCount <= 0 {
		return fmt.Errorf("ingestion.worker_count must be > 0")
	}
	if c.Ingestion.RetainRaw && c.Ingestion.RetentionCapacity <= 0 {
		return fmt.Errorf("ingestion.retention_capacity must be > 0 when retain_raw is enabled")
	}

	if _, err := engine.ParseGranularity(c.Analysis.Granularity); err != nil {
		return fmt.Errorf("analysis.granularity: %w", err)
	}
	if c.Analysis.TopTerms <= 0 {
		return fmt.Errorf("analysis.top_terms must be > 0")
	}
	if c.Analysis.SummarySentences <= 0 {
		return fmt.Errorf("analysis.summary_sentences must be > 0")
	}

	switch c.Classifier.Type {
	case "lexicon":
	case "remote":
		if strings.TrimSpace(c.Classifier.RemoteURL) == "" {
			return fmt.Errorf("classifier.remote_url is required when classifier.type is remote")
		}
		if c.Classifier.Timeout != "" {
			d, err := time.ParseDuration(c.Classifier.Timeout)
			if err != nil {
				return fmt.Errorf("invalid classifier.timeout %q: %w", c.Classifier.Timeout, err)
			}
			if d <= 0 {
				return fmt.Errorf("classifier.timeout must be > 0")
			}
		}
	default:
		return fmt.Errorf("unsupported classifier.type %q (must be lexicon or remote)", c.Classifier.Type)
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  8080,
		"server.host":                  "0.0.0.0",
		"server.max_body_size_mb":      50,
		"server.mode":                  "release",
		"ingestion.max_rows":           100000,
		"ingestion.max_bytes":          int64(50 * 1024 * 1024),
		"ingestion.worker_count":       8,
		"ingestion.retain_raw":         false,
		"ingestion.retention_capacity": 10000,
		"analysis.granularity":         "month",
		"analysis.top_terms":           10,
		"analysis.summary_sentences":   3,
		"analysis.lexicon_dir":         "",
		"classifier.type":              "lexicon",
		"classifier.remote_url":        "",
		"classifier.timeout":           "5s",
		"metrics.enabled":              false,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("SENTIO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SENTIO_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
