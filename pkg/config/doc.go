// Package config provides configuration loading, validation and access
// for Railguard.
//
// Configuration is loaded from a YAML file, filled in with documented
// defaults, optionally overridden by RAILGUARD_* environment variables
// and validated as a whole before use. A process-wide singleton holds
// the result; components receive the Config (or their section of it) by
// injection.
package config
