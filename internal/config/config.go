package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level droidusage configuration.
type Config struct {
	SessionsDir string     `mapstructure:"sessions_dir"`
	LogsDir     string     `mapstructure:"logs_dir"`
	BatchSize   int        `mapstructure:"batch_size"`
	Thresholds  Thresholds `mapstructure:"thresholds"`
	Output      Output     `mapstructure:"output"`
}

// Thresholds defines the levels at which analyzers emit warnings.
type Thresholds struct {
	MonthlyBurnWarning    float64 `mapstructure:"monthly_burn_warning"`
	SessionCostWarning    float64 `mapstructure:"session_cost_warning"`
	CacheRatePercentFloor float64 `mapstructure:"cache_rate_percent_floor"`
	ProviderConcentration float64 `mapstructure:"provider_concentration"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("sessions_dir", DefaultSessionsDir)
	v.SetDefault("logs_dir", DefaultLogsDir)
	v.SetDefault("batch_size", DefaultBatchSize)
	v.SetDefault("thresholds.monthly_burn_warning", DefaultThresholds.MonthlyBurnWarning)
	v.SetDefault("thresholds.session_cost_warning", DefaultThresholds.SessionCostWarning)
	v.SetDefault("thresholds.cache_rate_percent_floor", DefaultThresholds.CacheRatePercentFloor)
	v.SetDefault("thresholds.provider_concentration", DefaultThresholds.ProviderConcentration)
	v.SetDefault("output.color", DefaultOutput.Color)

	if cfgFile == "" {
		cfgFile = filepath.Join(DefaultConfigDir, DefaultConfigFile)
	}
	v.SetConfigFile(expandPath(cfgFile))

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.SessionsDir = expandPath(cfg.SessionsDir)
	cfg.LogsDir = expandPath(cfg.LogsDir)
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &cfg, nil
}

// DBPath returns the full path to the SQLite snapshot database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}
