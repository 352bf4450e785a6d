// Package commands implements the leapclean subcommands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/leapclean/internal/cli/config"
	"github.com/leapstack-labs/leapclean/internal/state"
)

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	port := config.DefaultPort
	if v, err := strconv.Atoi(os.Getenv("LEAPCLEAN_PORT")); err == nil && v > 0 {
		port = v
	}
	statePath := os.Getenv("LEAPCLEAN_STATE_PATH")
	if statePath == "" {
		statePath = config.DefaultStateFile
	}
	apiKey := os.Getenv("LEAPCLEAN_ADVISOR_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	return &config.Config{
		Port:                 port,
		StatePath:            statePath,
		SessionTTLMinutes:    config.DefaultSessionTTLMinutes,
		SweepIntervalMinutes: config.DefaultSweepMinutes,
		AdvisorAPIKey:        apiKey,
		AdvisorModel:         config.DefaultAdvisorModel,
		CorrelationThreshold: config.DefaultCorrelationThreshold,
		Verbose:              os.Getenv("LEAPCLEAN_VERBOSE") == "true",
	}
}

// openHistory opens the cleaning history database, creating the state
// directory and running migrations as needed.
func openHistory(cfg *config.Config) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
