package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/recipient/internal/cli"
	"github.com/aretw0/recipient/internal/ratelimit"
	httpAdapter "github.com/aretw0/recipient/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the record API (/api/recipients/{id}) and the screen API (/screens),
with server-sent state diffs, Prometheus metrics at /metrics and the OpenAPI
document at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		stack, err := loadStack(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		cfg := stack.Config
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		sessions := stack.NewSessions()
		defer sessions.CloseAll()

		handler, err := httpAdapter.NewHandler(sessions, stack.API,
			httpAdapter.WithLogger(stack.Logger),
			httpAdapter.WithMetrics(stack.Registry),
			httpAdapter.WithRateLimiter(ratelimit.New(cfg.HTTP.RateLimit, cfg.HTTP.Burst, 10*time.Minute)),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			stack.Logger.Info("recipient server listening", "address", srv.Addr, "store", cfg.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			stack.Logger.Info("shutting down", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				stack.Logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			stack.Logger.Info("recipient server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides http.addr)")
}
