package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/pagemap-sessions/internal/adapters/httpapi"
	"github.com/bnema/pagemap-sessions/internal/config"
	"github.com/bnema/pagemap-sessions/internal/idle"
	"github.com/bnema/pagemap-sessions/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the session API and the idle sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger := initLogger(cfg.Log, cmd.ErrOrStderr())

			app, err := wireApp(v, cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, app)
		},
	}

	flags := cmd.Flags()
	flags.Duration("idle-timeout", idle.DefaultIdleTimeout, "Discard the last page of page maps idle this long")
	flags.Duration("sweep-period", idle.DefaultSweepPeriod, "Interval between idle sweeps")
	flags.String("addr", "127.0.0.1:8080", "HTTP listen address")
	flags.String("store", config.StoreKindTOML, "Page store: toml or memory")

	bindFlag(v, config.KeyIdleTimeout, cmd, "idle-timeout")
	bindFlag(v, config.KeySweepPeriod, cmd, "sweep-period")
	bindFlag(v, config.KeyServerAddr, cmd, "addr")
	bindFlag(v, config.KeyStoreKind, cmd, "store")

	return cmd
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

// runServer serves the API and runs the sweeper until ctx ends or the
// listener fails, then drains in-flight requests and stops the sweeper.
func runServer(ctx context.Context, app *app) error {
	logger := app.logger

	listener, err := net.Listen("tcp", app.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", app.cfg.Server.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	router := httpapi.NewRouter(gctx, app.sessions, app.coordinator, httpapi.Options{
		Mode:              app.cfg.Server.Mode,
		RequestsPerSecond: app.cfg.RateLimit.RequestsPerSecond,
		Burst:             app.cfg.RateLimit.Burst,
		StartedAt:         time.Now(),
		Version:           version.Version,
		Logger:            logger,
	})

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	app.coordinator.Start(gctx)
	logger.Info("pms starting",
		"addr", listener.Addr().String(),
		"store", app.cfg.Store.Kind,
		"idle_timeout", app.cfg.Idle.Timeout,
		"sweep_period", app.cfg.Idle.SweepPeriod,
	)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		app.coordinator.Stop()
		app.failures.Close()
		if err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		logger.Info("http server drained gracefully")
		return nil
	})

	g.Go(func() error {
		for err := range app.failures.Errors() {
			var scanErr *idle.ScanError
			if errors.As(err, &scanErr) && scanErr.Panic != nil {
				logger.Warn("idle sweep recovered from panic", "pass", scanErr.Pass, "panic", scanErr.Panic)
			}
		}
		if dropped := app.failures.Dropped(); dropped > 0 {
			logger.Warn("sweep failures dropped", "count", dropped)
		}
		return nil
	})

	return g.Wait()
}
