package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Columns ColumnsConfig `yaml:"columns" mapstructure:"columns"`
	Clean   CleanConfig   `yaml:"clean" mapstructure:"clean"`
	Dedupe  DedupeConfig  `yaml:"dedupe" mapstructure:"dedupe"`
	Split   SplitConfig   `yaml:"split" mapstructure:"split"`
	MARC    MARCConfig    `yaml:"marc" mapstructure:"marc"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ColumnsConfig names the export columns read as subject id and annotation.
type ColumnsConfig struct {
	Subject    string `yaml:"subject" mapstructure:"subject"`
	Annotation string `yaml:"annotation" mapstructure:"annotation"`
	Charset    string `yaml:"charset" mapstructure:"charset"`
}

// CleanConfig configures annotation normalization.
type CleanConfig struct {
	ExtraFragments []string `yaml:"extra_fragments" mapstructure:"extra_fragments"`
}

// DedupeConfig configures subject resolution.
type DedupeConfig struct {
	Seed         int64  `yaml:"seed" mapstructure:"seed"` // 0 = seed from clock
	Concurrency  int    `yaml:"concurrency" mapstructure:"concurrency"`
	OutputSuffix string `yaml:"output_suffix" mapstructure:"output_suffix"`
	DefaultName  string `yaml:"default_name" mapstructure:"default_name"`
}

// SplitConfig configures transcript splitting.
type SplitConfig struct {
	PadWidth int `yaml:"pad_width" mapstructure:"pad_width"`
}

// MARCConfig configures MARCXML generation.
type MARCConfig struct {
	Leader              string `yaml:"leader" mapstructure:"leader"`
	ControlNumberPrefix string `yaml:"control_number_prefix" mapstructure:"control_number_prefix"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	RatePerSec     float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst          int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRANSCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("columns.subject", "subject_ids")
	v.SetDefault("columns.annotation", "annotations")
	v.SetDefault("columns.charset", "utf-8")
	v.SetDefault("clean.extra_fragments", []string{})
	v.SetDefault("dedupe.seed", 0)
	v.SetDefault("dedupe.concurrency", 4)
	v.SetDefault("dedupe.output_suffix", "-cleaned")
	v.SetDefault("dedupe.default_name", "cleaned-zooniverse-data.csv")
	v.SetDefault("split.pad_width", 4)
	v.SetDefault("marc.leader", "00000nam a2200000 a 4500")
	v.SetDefault("marc.control_number_prefix", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.rate_per_sec", 5.0)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "dedupe":
		if c.Columns.Subject == "" {
			problems = append(problems, "columns.subject is required")
		}
		if c.Columns.Annotation == "" {
			problems = append(problems, "columns.annotation is required")
		}
		if c.Dedupe.Concurrency < 1 || c.Dedupe.Concurrency > 64 {
			problems = append(problems, "dedupe.concurrency must be between 1 and 64")
		}
	case "split":
		if c.Split.PadWidth < 1 || c.Split.PadWidth > 12 {
			problems = append(problems, "split.pad_width must be between 1 and 12")
		}
	case "marc", "xhtml":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.MaxUploadMB <= 0 {
			problems = append(problems, "server.max_upload_mb must be > 0")
		}
		if c.Server.RatePerSec <= 0 {
			problems = append(problems, "server.rate_per_sec must be > 0")
		}
		if c.Server.Burst < 1 {
			problems = append(problems, "server.burst must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
