// Package httpserver provides an http.Server wrapper with environment-driven
// configuration, graceful shutdown on SIGINT/SIGTERM or context cancellation,
// and a probe handler for liveness and readiness checks.
//
// Usage:
//
//	srv := httpserver.New(cfg, mux, httpserver.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//		log.Error("server failed", slog.Any("error", err))
//	}
package httpserver
