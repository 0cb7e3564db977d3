package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ananthvk/filecabinet/internal/record"
	"github.com/ananthvk/filecabinet/internal/validation"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"

	EnvPrefix = "CABINET"
)

// Config stores all configuration of the console application.
// The values are read by viper from flags, environment variables (CABINET_ prefix) or a config file
type Config struct {
	Storage         string `mapstructure:"storage"`
	ValidationRules string `mapstructure:"validation-rules"`
	RulesFile       string `mapstructure:"rules-file"`
	Encoding        string `mapstructure:"encoding"`
	DataDir         string `mapstructure:"data-dir"`
	UseStopwatch    bool   `mapstructure:"use-stopwatch"`
	UseLogger       bool   `mapstructure:"use-logger"`
	LogFile         string `mapstructure:"log-file"`
	LogLevel        string `mapstructure:"log-level"`
}

// NewFlagSet declares the command line flags of the console application
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringP("storage", "s", StorageMemory, "storage backend, memory or file")
	flags.StringP("validation-rules", "v", validation.DefaultRuleSet, "validation rule set, default or custom")
	flags.String("rules-file", "validation-rules.json", "JSON file overriding the validation rule sets")
	flags.StringP("encoding", "e", string(record.UTF8), "text encoding of names in a new data file, utf-8 or utf-16")
	flags.String("data-dir", "cabinet", "directory of the file storage")
	flags.Bool("use-stopwatch", false, "log how long every service call took")
	flags.Bool("use-logger", false, "write every service call to the log file")
	flags.String("log-file", "cabinet-log.txt", "file written by --use-logger")
	flags.String("log-level", "info", "diagnostic log level, debug, info, warn or error")
	flags.String("config", "", "config file (default is ./cabinet.yaml)")
	return flags
}

// Load parses args and merges them with the environment and the config file. Flags that are set
// explicitly win over the environment, which wins over the config file
func Load(fs afero.Fs, args []string) (*Config, error) {
	flags := NewFlagSet("cabinet")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fs)
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_")) // data-dir becomes CABINET_DATA_DIR
	v.AutomaticEnv()

	configPath, _ := flags.GetString("config")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("cabinet")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the values and rejects the ones the application cannot use
func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	if c.Storage != StorageMemory && c.Storage != StorageFile {
		return fmt.Errorf("invalid storage %q, expected %s or %s", c.Storage, StorageMemory, StorageFile)
	}
	c.ValidationRules = strings.ToLower(strings.TrimSpace(c.ValidationRules))
	encoding, err := record.ParseTextEncoding(c.Encoding)
	if err != nil {
		return err
	}
	c.Encoding = string(encoding)
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
