package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/internal/presentation/tui"
	httpAdapter "github.com/aretw0/arrayschema/pkg/adapters/http"
	"github.com/aretw0/arrayschema/pkg/observability"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the schema registry HTTP server",
		Long: `Serves the schema store as a JSON API: schema CRUD, validation of
container documents, Prometheus metrics at /metrics and a live stream of
validation events at /events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewMetrics(reg)
			streams := httpAdapter.NewStreamManager()

			schemas, store, err := e.open(registry.WithHooks(observability.Combine(metrics.Hooks(), streams.Hooks())))
			if err != nil {
				return err
			}
			defer store.Close()

			handler := httpAdapter.NewHandler(schemas,
				httpAdapter.WithLogger(e.logger),
				httpAdapter.WithStreams(streams),
				httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			)

			srv := &http.Server{
				Addr:              e.cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if tui.IsTerminal(cmd.ErrOrStderr()) {
				tui.PrintBanner(cmd.ErrOrStderr(), arrayschema.Version)
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				e.logger.Info("Starting arrayschema server", "address", srv.Addr, "backend", e.cfg.Store.Backend)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case sig := <-shutdown:
				e.logger.Info("Start shutdown", "signal", sig.String())

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					e.logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
					return srv.Close()
				}
				e.logger.Info("arrayschema server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", "", "Address to listen on (default :8080)")
	return cmd
}
