package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/docsight/internal/logger"
)

// serveMetrics exposes /metrics on addr until ctx is done. An empty addr
// or a missing handler does nothing.
func serveMetrics(ctx context.Context, addr string) (string, error) {
	if addr == "" {
		return "", nil
	}
	if metricsHandler == nil {
		return "", errors.New("metrics are not configured")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return ln.Addr().String(), nil
}
