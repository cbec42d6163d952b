// Package config loads and validates the survey pipeline configuration.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Clean   CleanConfig   `yaml:"clean" mapstructure:"clean"`
	Weather WeatherConfig `yaml:"weather" mapstructure:"weather"`
	Compare CompareConfig `yaml:"compare" mapstructure:"compare"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig locates the field-survey relational store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
	Query        string `yaml:"query" mapstructure:"query"`
}

// SourcesConfig locates the remote CSV resources.
type SourcesConfig struct {
	WeatherCSV  string  `yaml:"weather_csv" mapstructure:"weather_csv"`
	MappingCSV  string  `yaml:"mapping_csv" mapstructure:"mapping_csv"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Timeout returns the HTTP timeout as a duration.
func (s SourcesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// CleanConfig configures field-survey normalization. SwapFrom/SwapTo is a
// single mutually-exchanged column pair; multi-column swaps are not
// supported.
type CleanConfig struct {
	SwapFrom    string            `yaml:"swap_from" mapstructure:"swap_from"`
	SwapTo      string            `yaml:"swap_to" mapstructure:"swap_to"`
	CropColumn  string            `yaml:"crop_column" mapstructure:"crop_column"`
	Corrections map[string]string `yaml:"corrections" mapstructure:"corrections"`
	AbsColumn   string            `yaml:"abs_column" mapstructure:"abs_column"`
	CropTypes   []string          `yaml:"crop_types" mapstructure:"crop_types"`
}

// WeatherConfig configures message extraction. Rule order is significant:
// the first matching pattern wins.
type WeatherConfig struct {
	Rules []RuleConfig `yaml:"rules" mapstructure:"rules"`
}

// RuleConfig binds a measurement kind to its extraction pattern.
type RuleConfig struct {
	Kind    string `yaml:"kind" mapstructure:"kind"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
}

// CompareConfig configures the hypothesis-test stage.
type CompareConfig struct {
	Alpha float64 `yaml:"alpha" mapstructure:"alpha"`
}

// ExportConfig configures CSV artifact output.
type ExportConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	FieldFile   string `yaml:"field_file" mapstructure:"field_file"`
	WeatherFile string `yaml:"weather_file" mapstructure:"weather_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment and validates it.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SURVEY")
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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.database_path", "farm_survey.db")
	v.SetDefault("store.query", `
		SELECT *
		FROM geographic_features
		LEFT JOIN weather_features USING (Field_ID)
		LEFT JOIN soil_and_crop_features USING (Field_ID)
		LEFT JOIN farm_management_features USING (Field_ID)
	`)

	v.SetDefault("sources.weather_csv", "https://raw.githubusercontent.com/Explore-AI/Public-Data/master/Maji_Ndogo/Weather_station_data.csv")
	v.SetDefault("sources.mapping_csv", "https://raw.githubusercontent.com/Explore-AI/Public-Data/master/Maji_Ndogo/Weather_data_field_mapping.csv")
	v.SetDefault("sources.user_agent", "survey-cli/1.0")
	v.SetDefault("sources.timeout_secs", 30)
	v.SetDefault("sources.rate_per_sec", 2.0)

	v.SetDefault("clean.swap_from", "Annual_yield")
	v.SetDefault("clean.swap_to", "Crop_type")
	v.SetDefault("clean.crop_column", "Crop_type")
	v.SetDefault("clean.abs_column", "Elevation")
	v.SetDefault("clean.corrections", map[string]string{
		"cassaval": "cassava",
		"cassava ": "cassava",
		"wheatn":   "wheat",
		"wheat ":   "wheat",
		"teaa":     "tea",
		"tea ":     "tea",
	})
	v.SetDefault("clean.crop_types", []string{
		"cassava", "wheat", "tea", "potato", "maize", "rice", "banana", "coffee",
	})

	// Order matters: extraction tries rules top to bottom.
	v.SetDefault("weather.rules", []map[string]any{
		{"kind": "Rainfall", "pattern": `(\d+(\.\d+)?)\s?mm`},
		{"kind": "Temperature", "pattern": `(\d+(\.\d+)?)\s?C`},
		{"kind": "Pollution_level", "pattern": `=\s*(-?\d+(\.\d+)?)|Pollution at \s*(-?\d+(\.\d+)?)`},
	})

	v.SetDefault("compare.alpha", 0.05)

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.field_file", "field_data.csv")
	v.SetDefault("export.weather_file", "weather_data.csv")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate rejects configurations that cannot produce a meaningful run.
// Failures here are fatal at startup, before any data is touched.
func (c *Config) Validate() error {
	if c.Store.DatabasePath == "" {
		return eris.New("config: store.database_path is required")
	}
	if strings.TrimSpace(c.Store.Query) == "" {
		return eris.New("config: store.query is required")
	}
	if c.Sources.WeatherCSV == "" {
		return eris.New("config: sources.weather_csv is required")
	}
	if c.Sources.MappingCSV == "" {
		return eris.New("config: sources.mapping_csv is required")
	}
	if c.Clean.SwapFrom == "" || c.Clean.SwapTo == "" {
		return eris.New("config: clean.swap_from and clean.swap_to must both be set")
	}
	if c.Clean.SwapFrom == c.Clean.SwapTo {
		return eris.New("config: clean column swap pair must name two distinct columns")
	}
	if len(c.Weather.Rules) == 0 {
		return eris.New("config: weather.rules must declare at least one pattern")
	}
	for _, r := range c.Weather.Rules {
		if r.Kind == "" || r.Pattern == "" {
			return eris.New("config: weather rule needs both kind and pattern")
		}
	}
	if c.Compare.Alpha <= 0 || c.Compare.Alpha >= 1 {
		return eris.New("config: compare.alpha must be in (0, 1)")
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
