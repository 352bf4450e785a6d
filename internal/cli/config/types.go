// Package config provides configuration management for the leapclean CLI.
//
// Configuration is layered: built-in defaults, then an optional
// leapclean.yaml file, then LEAPCLEAN_ environment variables, then
// explicitly set CLI flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	Port                 int     `koanf:"port"`
	StatePath            string  `koanf:"state_path"`
	SessionSecret        string  `koanf:"session_secret"`
	SessionTTLMinutes    int     `koanf:"session_ttl_minutes"`
	SweepIntervalMinutes int     `koanf:"sweep_interval_minutes"`
	AdvisorAPIKey        string  `koanf:"advisor_api_key"`
	AdvisorModel         string  `koanf:"advisor_model"`
	CorrelationThreshold float64 `koanf:"correlation_threshold"`
	Verbose              bool    `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultPort                 = 8080
	DefaultStateFile            = ".leapclean/state.db"
	DefaultSessionTTLMinutes    = 120
	DefaultSweepMinutes         = 10
	DefaultAdvisorModel         = "gemini-2.5-flash"
	DefaultCorrelationThreshold = 0.90
)
