// pkg/config/settings.go

package config

import (
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables read into Settings.
const EnvPrefix = "XENCHECK"

// Settings holds ambient knobs that never change what the check reports.
type Settings struct {
	LogLevel      string // console log level on stderr; empty disables console logging
	LogFile       string // JSON log file override
	Telemetry     bool
	TelemetryFile string
}

// LoadSettings reads Settings from XENCHECK_* environment variables.
func LoadSettings() Settings {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("log_level", "")
	v.SetDefault("log_file", "")
	v.SetDefault("telemetry", false)
	v.SetDefault("telemetry_file", "")

	return Settings{
		LogLevel:      v.GetString("log_level"),
		LogFile:       v.GetString("log_file"),
		Telemetry:     v.GetBool("telemetry"),
		TelemetryFile: v.GetString("telemetry_file"),
	}
}
