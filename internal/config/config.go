// Package config loads daemon settings from flags, an optional TOML
// file and environment variables, in that order of precedence.
package config

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
)

const (
	configName = "tuxedoctl"
	configType = "toml"
	configPath = "/etc"
	envPrefix  = "TUXEDOCTL"

	DefaultLogLevel = "info"

	defaultInterval     = 2
	defaultScanInterval = 5
)

type Config struct {
	Interval     int    `mapstructure:"interval"`
	ScanInterval int    `mapstructure:"scan_interval"`
	ProfilesPath string `mapstructure:"profiles_path"`
	Monitor      bool   `mapstructure:"monitor"`
	LogLevel     string `mapstructure:"log_level"`
	Telemetry    bool   `mapstructure:"telemetry"`
	TelemetryDB  string `mapstructure:"database"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("scan_interval", defaultScanInterval)
	v.SetDefault("profiles_path", "")
	v.SetDefault("monitor", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")

	flags := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Int("interval", defaultInterval, "Seconds between fan control updates")
	flags.Int("scan-interval", defaultScanInterval, "Seconds between process table scans")
	flags.String("profiles-path", "", "Path to the profiles JSON file")
	flags.Bool("monitor", false, "Only monitor sensors, do not touch hardware")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.Bool("telemetry", false, "Record control decisions to the telemetry database")
	flags.String("database", "", "Path to the telemetry database")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"interval":      "interval",
		"scan_interval": "scan-interval",
		"profiles_path": "profiles-path",
		"monitor":       "monitor",
		"log_level":     "log-level",
		"telemetry":     "telemetry",
		"database":      "database",
	}
	for key, flagName := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.ScanInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.ScanInterval)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
