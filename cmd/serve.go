package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/config"
	"github.com/sells-group/flightdelay/internal/dashboard"
	"github.com/sells-group/flightdelay/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		handler, err := buildHandler(ctx, cfg)
		if err != nil {
			return err
		}
		return startServer(ctx, handler, resolvePort(servePort, cfg.Server.Port))
	},
}

// buildHandler loads the dataset up front so a bad source fails at startup
// rather than on the first request.
func buildHandler(ctx context.Context, c *config.Config) (http.Handler, error) {
	cache, err := newDatasetCache(c)
	if err != nil {
		return nil, err
	}
	ds, err := cache.Get(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load dataset")
	}
	zap.L().Info("dataset ready",
		zap.Int("flights", len(ds.Flights)),
		zap.Int("airports", len(ds.OriginDomain())),
		zap.Int("airlines", len(ds.AirlineDomain())),
	)

	m := dashboard.NewManager(cache, aggregateOptions(c))
	return server.New(m, server.Options{
		RateLimit:   c.Server.RateLimit,
		RateBurst:   c.Server.RateBurst,
		CORSOrigins: c.Server.CORSOrigins,
		TrustProxy:  c.Server.TrustProxy,
		Thresholds:  thresholds(c),
	}), nil
}

func resolvePort(flag, configured int) int {
	if flag != 0 {
		return flag
	}
	return configured
}

// startServer serves until ctx is canceled, then shuts down gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	if err, ok := <-errCh; ok {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
