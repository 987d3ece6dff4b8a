package serve

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/mediathek/internal/cmd/emoji"
	"github.com/agentstation/mediathek/internal/server"
	"github.com/agentstation/mediathek/pkg/constants"
)

// startWithGracefulShutdown serves until the command context is cancelled,
// then drains connections and stops the background services.
func startWithGracefulShutdown(cmd *cobra.Command, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("listening on %s: %w", httpServer.Addr, err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", ln.Addr().String()).
			Str("service", "API").
			Msg("HTTP server listening")

		fmt.Fprintf(out, "%s API server listening on %s\n", emoji.Launch, ln.Addr())
		fmt.Fprintln(out, "   Press Ctrl+C to stop")

		if err := httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received via context")
		fmt.Fprintf(out, "\n%s Shutting down API server...\n", emoji.Stop)

		// the parent context is already cancelled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 6*constants.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		fmt.Fprintf(out, "%s Server stopped\n", emoji.Success)
		return nil
	}
}
