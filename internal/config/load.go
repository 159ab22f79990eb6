package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "HANZI"

// Flag names registered by NewFlagSet.
const (
	FlagConfig   = "config"
	FlagPort     = "port"
	FlagLogLevel = "log-level"
	FlagMigrate  = "migrate"
)

// defaults are applied before any file, environment or flag source.
var defaults = map[string]any{
	"server.port":                        8080,
	"server.log_level":                   "info",
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,
	"auth.enabled":                       true,
	"auth.token_lifetime_minutes":        1440,
	"llm.model_name":                     "gemini-2.0-flash",
	"llm.max_retries":                    3,
	"llm.retry_delay_seconds":            2,
	"review.default_limit":               20,
	"reminder.interval_minutes":          60,
}

// keys without defaults that must still be read from the environment.
var envOnlyKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"llm.gemini_api_key",
}

// LoadOptions controls where Load reads configuration from.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, config.yaml is looked
	// up in the working directory and silently skipped if absent.
	ConfigFile string

	// EnvFiles are dotenv files loaded before reading the environment.
	// Missing files are ignored. Values already in the environment win.
	EnvFiles []string

	// Flags, when set, are bound on top of every other source. Only flags
	// the user actually set override other values.
	Flags *pflag.FlagSet
}

// NewFlagSet returns the command-line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String(FlagConfig, "", "path to a YAML configuration file")
	flags.Int(FlagPort, 8080, "HTTP listen port")
	flags.String(FlagLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(FlagMigrate, "", "run a migration command (up, down, status, version) and exit")
	return flags
}

// Load configuration from environment variables and an optional config.yaml
// in the working directory. Environment variables take precedence over file
// values. Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFiles: []string{".env"}})
}

// LoadWithOptions loads configuration with explicit sources.
// Precedence, highest first: flags, environment, config file, defaults.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	configFile := opts.ConfigFile
	if configFile == "" && opts.Flags != nil {
		if f := opts.Flags.Lookup(FlagConfig); f != nil {
			configFile = f.Value.String()
		}
	}

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range allKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("configuration validation failed: auth.jwt_secret is required when auth is enabled")
	}

	return nil
}

func loadEnvFiles(files []string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"server.port":      FlagPort,
		"server.log_level": FlagLogLevel,
	}

	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("error binding flag --%s: %w", name, err)
		}
	}

	return nil
}

func allKeys() []string {
	keys := make([]string, 0, len(defaults)+len(envOnlyKeys))
	for key := range defaults {
		keys = append(keys, key)
	}
	return append(keys, envOnlyKeys...)
}
