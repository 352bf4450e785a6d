package config

import "fmt"

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("session_ttl_minutes cannot be negative, got %d", c.SessionTTLMinutes)
	}
	if c.CorrelationThreshold <= 0 || c.CorrelationThreshold > 1 {
		return fmt.Errorf("correlation_threshold must be in (0, 1], got %g", c.CorrelationThreshold)
	}
	return nil
}
