package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Config holds process-level settings. Values come from an optional YAML
// file, overridden by environment variables, overridden by flags in main.
type Config struct {
	// Path of the SQLite database file
	DBPath string `yaml:"db_path" validate:"required"`
	// Transport for the MCP server
	Transport string `yaml:"transport" validate:"oneof=stdio http"`
	// HTTP port, used only with the http transport
	Port string `yaml:"port" validate:"required"`
	// Minimum log level
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Load reads the config file at path if it exists, applies defaults and the
// DATABASE_PATH environment override, and validates the result.
func Load(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// no config file is fine, defaults apply
	case err != nil:
		return nil, oops.Errorf("failed to read config file: %w", err)
	default:
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if result.DBPath == "" {
		result.DBPath = "data/knowstore.sqlite"
	}
	if result.Transport == "" {
		result.Transport = "stdio"
	}
	if result.Port == "" {
		result.Port = "8081"
	}
	if result.LogLevel == "" {
		result.LogLevel = "info"
	}

	if env := os.Getenv("DATABASE_PATH"); env != "" {
		result.DBPath = env
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
