// Package config loads application configuration from config.yaml and the
// ESTATEAI_ environment, and owns global logger setup.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/ingest"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig             `yaml:"store" mapstructure:"store"`
	Ingest     IngestConfig            `yaml:"ingest" mapstructure:"ingest"`
	Benchmarks BenchmarkConfig         `yaml:"benchmarks" mapstructure:"benchmarks"`
	Analytics  AnalyticsConfig         `yaml:"analytics" mapstructure:"analytics"`
	Markets    []ingest.GazetteerEntry `yaml:"markets" mapstructure:"markets"`
	Log        LogConfig               `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// IngestConfig holds batch ingestion defaults.
type IngestConfig struct {
	Portal      string `yaml:"portal" mapstructure:"portal"`
	ListingType string `yaml:"listing_type" mapstructure:"listing_type"`
}

// BenchmarkConfig configures the rent benchmark rebuild.
type BenchmarkConfig struct {
	MinListingsPerBucket int `yaml:"min_listings_per_bucket" mapstructure:"min_listings_per_bucket"`
}

// AnalyticsConfig holds capex estimation defaults.
type AnalyticsConfig struct {
	Country      string `yaml:"country" mapstructure:"country"`
	Region       string `yaml:"region" mapstructure:"region"`
	BuildingType string `yaml:"building_type" mapstructure:"building_type"`
	SpecLevel    string `yaml:"spec_level" mapstructure:"spec_level"`
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
	v.SetEnvPrefix("ESTATEAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "estateai.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("ingest.portal", "rightmove")
	v.SetDefault("ingest.listing_type", "sale")
	v.SetDefault("benchmarks.min_listings_per_bucket", 5)
	v.SetDefault("analytics.country", "UK")
	v.SetDefault("analytics.region", "London")
	v.SetDefault("analytics.building_type", "residential")
	v.SetDefault("analytics.spec_level", "standard")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Default returns the built-in configuration, used by `config init`.
func Default() *Config {
	return &Config{
		Store:      StoreConfig{Driver: "sqlite", Path: "estateai.db", MaxConns: 10, MinConns: 2},
		Ingest:     IngestConfig{Portal: "rightmove", ListingType: "sale"},
		Benchmarks: BenchmarkConfig{MinListingsPerBucket: 5},
		Analytics: AnalyticsConfig{
			Country:      "UK",
			Region:       "London",
			BuildingType: "residential",
			SpecLevel:    "standard",
		},
		Markets: []ingest.GazetteerEntry{
			{Substring: "london", Market: "London", Country: "UK", Code: "LON"},
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// WriteDefault writes the built-in configuration to path as YAML. Refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("config: %s already exists", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
}

// Resolver builds the market resolver from the configured gazetteer, falling
// back to the built-in one when the config names no markets.
func (c *Config) Resolver() ingest.MarketResolver {
	if len(c.Markets) == 0 {
		return ingest.DefaultGazetteer()
	}
	return ingest.NewGazetteer(c.Markets)
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
