package config

import "time"

// Config is the root configuration structure for Railguard. It covers
// the gateway server, the LLM provider boundary, the guardrail engine,
// audit persistence and telemetry.
type Config struct {
	// Gateway contains HTTP gateway server configuration.
	Gateway GatewayConfig `yaml:"gateway"`

	// Provider contains the downstream LLM provider configuration.
	Provider ProviderConfig `yaml:"provider"`

	// Guardrails contains the guardrail engine configuration.
	Guardrails GuardrailsConfig `yaml:"guardrails"`

	// Agent contains agent loop configuration.
	Agent AgentConfig `yaml:"agent"`

	// Audit contains violation audit trail persistence configuration.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GatewayConfig contains configuration for the HTTP gateway server.
type GatewayConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProviderConfig contains configuration for the LLM provider client.
type ProviderConfig struct {
	// BaseURL is the provider's API endpoint.
	// Default: "https://openrouter.ai/api/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates with the provider. May also come from the
	// RAILGUARD_PROVIDER_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// Model is the default model identifier.
	Model string `yaml:"model"`

	// Temperature is the default sampling temperature.
	// Default: 0.7
	Temperature float64 `yaml:"temperature"`

	// Timeout bounds each provider request.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`
}

// GuardrailsConfig contains configuration for the guardrail engine.
type GuardrailsConfig struct {
	// Enabled gates whether any guardrail loading or scanning happens.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Enforce gates whether regex rules are compiled into the scan
	// engine. When false, guardrails load and render into the prompt
	// but nothing is scanned.
	// Default: true
	Enforce bool `yaml:"enforce"`

	// Dir is the primary workspace guardrails directory. Each immediate
	// subdirectory holds one guardrail manifest.
	// Default: "guardrails"
	Dir string `yaml:"dir"`

	// ExtraDirs are additional manifest roots merged after Dir, in
	// order. The first occurrence of a guardrail name wins.
	ExtraDirs []string `yaml:"extra_dirs"`

	// Repo optionally points at a shared remote manifest repository.
	Repo RepoConfig `yaml:"repo"`

	// Watch enables hot reload when manifests change on disk.
	// Default: false
	Watch bool `yaml:"watch"`
}

// RepoConfig describes a remote guardrail manifest repository.
type RepoConfig struct {
	// URL is the clone URL. Empty disables the remote source.
	URL string `yaml:"url"`

	// Branch is the branch to track. Default: "main".
	Branch string `yaml:"branch"`

	// Subdir is the path inside the repository holding the guardrails
	// root. Empty means the repository root.
	Subdir string `yaml:"subdir"`

	// Token is an optional access token for private repositories.
	Token string `yaml:"token"`
}

// AgentConfig contains configuration for the agent loop.
type AgentConfig struct {
	// MaxToolIterations caps tool-calling rounds per user message.
	// Default: 10
	MaxToolIterations int `yaml:"max_tool_iterations"`

	// SystemPrompt is the base system prompt; the rendered guardrail
	// advisory text is appended to it.
	SystemPrompt string `yaml:"system_prompt"`
}

// AuditConfig contains configuration for violation audit persistence.
type AuditConfig struct {
	// Enabled gates audit recording.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database file path.
	// Default: "data/audit.db"
	DBPath string `yaml:"db_path"`

	// Buffer is the async recorder channel size.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// RetentionDays is how long violation records are kept.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for retention pruning.
	// Default: "0 3 * * *" (daily at 3 AM). Empty disables pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled gates metrics collection and the /metrics endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "railguard"
	Namespace string `yaml:"namespace"`
}
