package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"fantasy-market/internal/config"
	"fantasy-market/internal/constants"
	fxmodules "fantasy-market/internal/fx"
	"fantasy-market/internal/middleware"
	"fantasy-market/internal/poll"
	"fantasy-market/internal/server"
	"fantasy-market/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	gateway *server.Gateway,
	transactions *service.TransactionService,
	activityPoller *poll.Poller,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) error {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(c.Handler(gateway.Routes()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SyncSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
		defer cancel()
		if _, err := transactions.SyncBuffer(ctx); err != nil {
			logger.Warn().Err(err).Msg("scheduled buffer sync failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", cfg.SyncSchedule, err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Replay anything left in the buffer from a previous run.
			if _, err := transactions.SyncBuffer(ctx); err != nil {
				logger.Warn().Err(err).Msg("startup buffer sync failed")
			}

			activityPoller.Start(context.Background())
			scheduler.Start()

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			activityPoller.Stop()
			<-scheduler.Stop().Done()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})

	return nil
}
