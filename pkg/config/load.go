package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Unmarshal onto a fully defaulted config so sections omitted from
	// the file keep their defaults. The UnmarshalYAML hooks only run for
	// keys present in the document, so true-by-default booleans in absent
	// sections would otherwise load as false.
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention RAILGUARD_SECTION_FIELD and always win over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies RAILGUARD_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("RAILGUARD_GATEWAY_LISTEN_ADDRESS"); val != "" {
		cfg.Gateway.ListenAddress = val
	}
	if val := os.Getenv("RAILGUARD_PROVIDER_BASE_URL"); val != "" {
		cfg.Provider.BaseURL = val
	}
	if val := os.Getenv("RAILGUARD_PROVIDER_API_KEY"); val != "" {
		cfg.Provider.APIKey = val
	}
	if val := os.Getenv("RAILGUARD_PROVIDER_MODEL"); val != "" {
		cfg.Provider.Model = val
	}
	if val := os.Getenv("RAILGUARD_PROVIDER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Provider.Timeout = d
		}
	}
	if val := os.Getenv("RAILGUARD_GUARDRAILS_ENABLED"); val != "" {
		cfg.Guardrails.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("RAILGUARD_GUARDRAILS_ENFORCE"); val != "" {
		cfg.Guardrails.Enforce = val == "true" || val == "1"
	}
	if val := os.Getenv("RAILGUARD_GUARDRAILS_DIR"); val != "" {
		cfg.Guardrails.Dir = val
	}
	if val := os.Getenv("RAILGUARD_GUARDRAILS_REPO_URL"); val != "" {
		cfg.Guardrails.Repo.URL = val
	}
	if val := os.Getenv("RAILGUARD_GUARDRAILS_REPO_TOKEN"); val != "" {
		cfg.Guardrails.Repo.Token = val
	}
	if val := os.Getenv("RAILGUARD_AUDIT_DB_PATH"); val != "" {
		cfg.Audit.DBPath = val
	}
	if val := os.Getenv("RAILGUARD_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
}
