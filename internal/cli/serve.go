package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mintlabs/mint-backend/internal/api"
	"github.com/mintlabs/mint-backend/internal/auth"
	"github.com/mintlabs/mint-backend/internal/commands"
	"github.com/mintlabs/mint-backend/internal/database"
	"github.com/mintlabs/mint-backend/internal/listener"
	"github.com/mintlabs/mint-backend/internal/monitoring"
	"github.com/mintlabs/mint-backend/internal/services"
	"github.com/mintlabs/mint-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background listener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	cfg := opts.Config

	// Set up database. Failing to reach it aborts startup.
	session, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	client := services.NewDataClient(session)
	defer client.Close()

	if err := client.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Set up and run the background listener on its own handle
	listenerClient := client.Clone()
	defer listenerClient.Close()
	lis := listener.New(listenerClient, hub, cfg.IngestQueueSize)
	go lis.Run()

	var sim *monitoring.Simulator
	if cfg.SimulatorEnabled {
		sim, err = monitoring.NewSimulator(lis, cfg.SimulatorSchedule)
		if err != nil {
			lis.Stop()
			lis.Wait()
			return err
		}
		go sim.Run()
	}

	var issuer *auth.Issuer
	if cfg.JWTSecret != "" {
		issuer, err = auth.NewIssuer(cfg.JWTSecret)
		if err != nil {
			return err
		}
	} else {
		log.Warn().Msg("JWT_SECRET not set, ingest endpoint is unauthenticated")
	}

	router := api.NewRouter(api.Options{AllowedOrigins: cfg.AllowedOrigins, Issuer: issuer}, hub, commands.New(client), lis)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("database", cfg.DatabasePath).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	case listenErr = <-serveErr:
		log.Error().Err(listenErr).Msg("Server failed")
	}

	if sim != nil {
		sim.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)

	lis.Stop()
	lis.Wait()
	ingested, failed := lis.Stats()
	log.Info().Int64("ingested", ingested).Int64("failed", failed).Msg("Server exiting")

	if listenErr != nil {
		return fmt.Errorf("listen: %w", listenErr)
	}
	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}
	return nil
}
