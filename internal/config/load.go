package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKS_AUTH_JWT_SECRET.
const EnvPrefix = "TASKS"

// ConfigFileEnv names a config file to read instead of ./config.yaml.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.shutdown_timeout_seconds": 10,
	"server.trust_proxy_headers":      false,
	"database.max_open_conns":         10,
	"auth.token_lifetime_minutes":     60,
	"auth.bcrypt_cost":                12,
	"redis.addr":                      "",
	"redis.password":                  "",
	"redis.db":                        0,
	"mail.from":                       "no-reply@tasks.local",
	"mail.worker_count":               2,
	"mail.queue_size":                 100,
}

// keys without defaults still need an explicit env binding for Unmarshal.
var requiredKeys = []string{
	"database.url",
	"auth.jwt_secret",
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range requiredKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// readConfigFile reads the file named by TASKS_CONFIG_FILE, or an optional
// config.yaml in the working directory. Only the implicit file may be absent.
func readConfigFile(v *viper.Viper) error {
	if err := v.BindEnv("config_file", ConfigFileEnv); err != nil {
		return fmt.Errorf("failed to bind env for config file: %w", err)
	}
	explicit := v.GetString("config_file")

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
