// Package config loads application configuration from file and environment
// and bootstraps the global logger.
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
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Scheme     SchemeConfig     `yaml:"scheme" mapstructure:"scheme"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Limits     LimitsConfig     `yaml:"limits" mapstructure:"limits"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SchemeConfig holds scheme-level parameters that are external
// configuration, never derived from the row data.
type SchemeConfig struct {
	// CCA is the Culturable Command Area in hectares. 0 means unset;
	// calculators that need it reject requests without one.
	CCA float64 `yaml:"cca" mapstructure:"cca"`
}

// ThresholdsConfig points at the YAML threshold preset file.
type ThresholdsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig configures the session store. The default ":memory:" DSN
// keeps session state inside the process.
type StoreConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// LimitsConfig bounds the serve endpoints.
type LimitsConfig struct {
	UploadMaxBytes int64   `yaml:"upload_max_bytes" mapstructure:"upload_max_bytes"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// Load reads configuration from config.yaml and the IPASTAT_* environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("IPASTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("thresholds.path", "thresholds.yaml")
	v.SetDefault("store.dsn", ":memory:")
	v.SetDefault("limits.upload_max_bytes", 16<<20)
	v.SetDefault("limits.requests_per_sec", 5)
	v.SetDefault("limits.burst", 10)

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
