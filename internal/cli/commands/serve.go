package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapclean/internal/advisor"
	"github.com/leapstack-labs/leapclean/internal/api"
	cliconfig "github.com/leapstack-labs/leapclean/internal/cli/config"
	"github.com/leapstack-labs/leapclean/internal/session"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the cleaning API server",
		Long: `Start the HTTP API server. Datasets are uploaded into in-memory
sessions and cleaned through the same pipeline the interactive CLI uses;
applied batches are recorded in the history database.`,
		Example: `  # Serve on the configured port
  leapclean serve

  # Serve on a custom port with the advisor enabled
  leapclean serve --port 3000 --api-key $GEMINI_API_KEY`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cfg := getConfig()
	logger := cliconfig.GetLogger(cmd.Context())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	sessions := session.NewStore(
		session.WithTTL(time.Duration(cfg.SessionTTLMinutes)*time.Minute),
		session.WithLogger(logger),
	)

	var adv core.Advisor
	if cfg.AdvisorAPIKey != "" {
		adv, err = advisor.New(ctx, cfg.AdvisorAPIKey, cfg.AdvisorModel, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize advisor: %w", err)
		}
	}

	secret := cfg.SessionSecret
	if secret == "" {
		// Ephemeral secret: cookies stop resolving across restarts,
		// but the sessions they pointed at are gone anyway.
		secret = uuid.NewString()
	}

	srv := api.NewServer(api.Config{
		Sessions:      sessions,
		History:       history,
		Advisor:       adv,
		Port:          cfg.Port,
		SessionSecret: secret,
		SweepInterval: time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		Logger:        logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapclean API listening on http://localhost:%d\n", cfg.Port)
	return srv.Serve(ctx)
}
