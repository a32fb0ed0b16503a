// Package config provides configuration loading and defaults for droidusage.
package config

// DefaultSessionsDir is the default location of the session files.
const DefaultSessionsDir = "~/.factory/sessions"

// DefaultLogsDir is the default location of the shared streaming log.
const DefaultLogsDir = "~/.factory/logs"

// DefaultConfigDir is the default location for droidusage configuration.
const DefaultConfigDir = "~/.config/droidusage"

// DefaultDBName is the filename for the SQLite snapshot database.
const DefaultDBName = "droidusage.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultBatchSize is how many sessions the loader reads concurrently.
const DefaultBatchSize = 50

// DefaultTopLimit is how many sessions the top command shows.
const DefaultTopLimit = 10

// DefaultThresholds holds the default insight thresholds.
var DefaultThresholds = Thresholds{
	MonthlyBurnWarning:    1000,
	SessionCostWarning:    10,
	CacheRatePercentFloor: 10,
	ProviderConcentration: 80,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}
