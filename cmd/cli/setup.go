package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func setup() (configpkg.Config, zerolog.Logger, error) {
	config, err := configpkg.Load(configDir)
	if err != nil {
		log.Error().Err(err).Msg("cannot load config")
		return config, zerolog.Nop(), err
	}

	logger := middleware.CreateLogger(config)

	if config.Environement != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	return config, logger, nil
}

// openDB returns nil when the memory store is configured.
func openDB(config configpkg.Config) (*sql.DB, error) {
	switch config.StoreDriver {
	case configpkg.StoreMemory:
		return nil, nil
	case configpkg.StorePostgres:
		return dbpkg.Setup(config.DBDriver, config.DBSource)
	default:
		return nil, fmt.Errorf("unknown store driver %q", config.StoreDriver)
	}
}

// serve runs handler on addr until a termination signal arrives, then shuts
// the server down and runs closers in order.
func serve(logger zerolog.Logger, config configpkg.Config, addr string, handler http.Handler, closers ...func(ctx context.Context) error) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: config.UpstreamTimeout,
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	errChan := make(chan error, 1)

	go func() {
		logger.Info().Str("address", addr).Msg("server has started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var result error

	select {
	case sig := <-signalChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		logger.Error().Err(err).Msg("server error")
		result = multierror.Append(result, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("shutdown server: %w", err))
	}

	for _, closeFn := range closers {
		if err := closeFn(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if result != nil {
		logger.Error().Err(result).Msg("server stopped with errors")
		return result
	}

	logger.Info().Msg("server stopped gracefully")

	return nil
}

func closer(fn func() error) func(context.Context) error {
	return func(context.Context) error { return fn() }
}
