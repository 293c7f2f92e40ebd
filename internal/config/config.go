package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the application configuration. Values come from defaults, an
// optional YAML file, and ERPACAD_* environment variables, in rising order
// of precedence.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Log      LogConfig      `mapstructure:"log"`
	Operator OperatorConfig `mapstructure:"operator"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

type DBConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type DatasetConfig struct {
	Path string `mapstructure:"path"`
}

type PolicyConfig struct {
	// Path to a YAML policy file. Empty uses the built-in policy.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type OperatorConfig struct {
	Name  string `mapstructure:"name"`
	Board string `mapstructure:"board"`
}

type LLMConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	LogCalls   bool   `mapstructure:"log_calls"`
	Endpoint   string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Model      string `mapstructure:"model"`
	TimeoutMs  int    `mapstructure:"timeout_ms" validate:"gte=1"`
	MaxRetries int    `mapstructure:"max_retries" validate:"gte=0"`
}

// Load reads configuration. When path is empty, erpacad.yaml is looked up
// in the working directory and ~/.erpacad; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ERPACAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("erpacad")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(homeDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", filepath.Join(homeDir(), "erpacad.db"))
	v.SetDefault("dataset.path", filepath.Join("data", "master.tsv"))
	v.SetDefault("policy.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("operator.name", os.Getenv("USER"))
	v.SetDefault("operator.board", "CBSE")

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.log_calls", false)
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.model", "llama3.2")
	v.SetDefault("llm.timeout_ms", 30000)
	v.SetDefault("llm.max_retries", 1)
}

// homeDir is ~/.erpacad, or .erpacad when no home directory is known.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".erpacad"
	}
	return filepath.Join(home, ".erpacad")
}
