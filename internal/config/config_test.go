package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "farm_survey.db", cfg.Store.DatabasePath)
	assert.Contains(t, cfg.Store.Query, "geographic_features")
	assert.Contains(t, cfg.Sources.WeatherCSV, "Weather_station_data.csv")
	assert.Contains(t, cfg.Sources.MappingCSV, "Weather_data_field_mapping.csv")
	assert.Equal(t, 30*time.Second, cfg.Sources.Timeout())

	assert.Equal(t, "Annual_yield", cfg.Clean.SwapFrom)
	assert.Equal(t, "Crop_type", cfg.Clean.SwapTo)
	assert.Equal(t, "Crop_type", cfg.Clean.CropColumn)
	assert.Equal(t, "Elevation", cfg.Clean.AbsColumn)
	assert.Equal(t, "wheat", cfg.Clean.Corrections["wheatn"])
	assert.Equal(t, "cassava", cfg.Clean.Corrections["cassava "])
	assert.Contains(t, cfg.Clean.CropTypes, "coffee")

	require.Len(t, cfg.Weather.Rules, 3)
	assert.Equal(t, "Rainfall", cfg.Weather.Rules[0].Kind)
	assert.Equal(t, "Temperature", cfg.Weather.Rules[1].Kind)
	assert.Equal(t, "Pollution_level", cfg.Weather.Rules[2].Kind)

	assert.InDelta(t, 0.05, cfg.Compare.Alpha, 1e-9)
	assert.Equal(t, "field_data.csv", cfg.Export.FieldFile)
	assert.Equal(t, "weather_data.csv", cfg.Export.WeatherFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  database_path: other.db
compare:
  alpha: 0.01
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "other.db", cfg.Store.DatabasePath)
	assert.InDelta(t, 0.01, cfg.Compare.Alpha, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values.
	assert.Equal(t, "Annual_yield", cfg.Clean.SwapFrom)
}

func TestLoadRulesFromYAMLKeepOrder(t *testing.T) {
	dir := chtemp(t)

	yaml := `
weather:
  rules:
    - kind: Temperature
      pattern: '(\d+)C'
    - kind: Rainfall
      pattern: '(\d+)mm'
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Weather.Rules, 2)
	assert.Equal(t, "Temperature", cfg.Weather.Rules[0].Kind)
	assert.Equal(t, "Rainfall", cfg.Weather.Rules[1].Kind)
}

func TestValidate(t *testing.T) {
	chtemp(t)
	base, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty swap pair", func(c *Config) { c.Clean.SwapFrom, c.Clean.SwapTo = "", "" }, "swap_from"},
		{"half swap pair", func(c *Config) { c.Clean.SwapTo = "" }, "swap_from"},
		{"degenerate swap pair", func(c *Config) { c.Clean.SwapTo = c.Clean.SwapFrom }, "distinct"},
		{"no rules", func(c *Config) { c.Weather.Rules = nil }, "at least one pattern"},
		{"rule without kind", func(c *Config) { c.Weather.Rules[0].Kind = "" }, "kind and pattern"},
		{"missing db path", func(c *Config) { c.Store.DatabasePath = "" }, "database_path"},
		{"blank query", func(c *Config) { c.Store.Query = "  \n" }, "query"},
		{"missing weather csv", func(c *Config) { c.Sources.WeatherCSV = "" }, "weather_csv"},
		{"missing mapping csv", func(c *Config) { c.Sources.MappingCSV = "" }, "mapping_csv"},
		{"alpha too big", func(c *Config) { c.Compare.Alpha = 1.0 }, "alpha"},
		{"alpha zero", func(c *Config) { c.Compare.Alpha = 0 }, "alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			cfg.Weather.Rules = append([]RuleConfig(nil), base.Weather.Rules...)
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
