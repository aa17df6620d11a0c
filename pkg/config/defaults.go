package config

import "time"

// Default values for configuration fields.
const (
	// Gateway defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Provider defaults
	DefaultProviderBaseURL     = "https://openrouter.ai/api/v1"
	DefaultProviderModel       = "anthropic/claude-sonnet-4"
	DefaultProviderTemperature = 0.7
	DefaultProviderTimeout     = 120 * time.Second

	// Guardrails defaults
	DefaultGuardrailsEnabled = true
	DefaultGuardrailsEnforce = true
	DefaultGuardrailsDir     = "guardrails"
	DefaultRepoBranch        = "main"

	// Agent defaults
	DefaultMaxToolIterations = 10

	// Audit defaults
	DefaultAuditEnabled       = true
	DefaultAuditDBPath        = "data/audit.db"
	DefaultAuditBuffer        = 1000
	DefaultAuditRetentionDays = 90
	DefaultAuditPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "railguard"
)

// NewDefaultConfig returns a configuration with all defaults applied,
// including the true-by-default booleans YAML unmarshalling normally
// handles.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Guardrails.Enabled = DefaultGuardrailsEnabled
	cfg.Guardrails.Enforce = DefaultGuardrailsEnforce
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Audit.PruneSchedule = DefaultAuditPruneSchedule
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields with their documented defaults.
// Boolean fields that default to true are handled in UnmarshalYAML
// hooks below, since a zero bool is indistinguishable from an explicit
// false after plain unmarshalling.
func ApplyDefaults(cfg *Config) {
	if cfg.Gateway.ListenAddress == "" {
		cfg.Gateway.ListenAddress = DefaultListenAddress
	}
	if cfg.Gateway.ReadTimeout <= 0 {
		cfg.Gateway.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Gateway.WriteTimeout <= 0 {
		cfg.Gateway.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Gateway.IdleTimeout <= 0 {
		cfg.Gateway.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Gateway.ShutdownTimeout <= 0 {
		cfg.Gateway.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = DefaultProviderBaseURL
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultProviderModel
	}
	if cfg.Provider.Temperature == 0 {
		cfg.Provider.Temperature = DefaultProviderTemperature
	}
	if cfg.Provider.Timeout <= 0 {
		cfg.Provider.Timeout = DefaultProviderTimeout
	}

	if cfg.Guardrails.Dir == "" {
		cfg.Guardrails.Dir = DefaultGuardrailsDir
	}
	if cfg.Guardrails.Repo.Branch == "" {
		cfg.Guardrails.Repo.Branch = DefaultRepoBranch
	}

	if cfg.Agent.MaxToolIterations <= 0 {
		cfg.Agent.MaxToolIterations = DefaultMaxToolIterations
	}

	if cfg.Audit.DBPath == "" {
		cfg.Audit.DBPath = DefaultAuditDBPath
	}
	if cfg.Audit.Buffer <= 0 {
		cfg.Audit.Buffer = DefaultAuditBuffer
	}
	if cfg.Audit.RetentionDays <= 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// UnmarshalYAML applies true-by-default semantics for the enabled and
// enforce flags: omitting them means on, an explicit false turns them
// off.
func (c *GuardrailsConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw GuardrailsConfig
	v := raw{Enabled: DefaultGuardrailsEnabled, Enforce: DefaultGuardrailsEnforce}
	if err := unmarshal(&v); err != nil {
		return err
	}
	*c = GuardrailsConfig(v)
	return nil
}

// UnmarshalYAML applies true-by-default semantics for audit recording.
func (c *AuditConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw AuditConfig
	v := raw{Enabled: DefaultAuditEnabled, PruneSchedule: DefaultAuditPruneSchedule}
	if err := unmarshal(&v); err != nil {
		return err
	}
	*c = AuditConfig(v)
	return nil
}

// UnmarshalYAML applies true-by-default semantics for metrics.
func (c *MetricsConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw MetricsConfig
	v := raw{Enabled: DefaultMetricsEnabled}
	if err := unmarshal(&v); err != nil {
		return err
	}
	*c = MetricsConfig(v)
	return nil
}
