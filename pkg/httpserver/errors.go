package httpserver

import "errors"

var (
	// ErrServe indicates that the server stopped with an error other than
	// a clean shutdown.
	ErrServe = errors.New("http server failed")

	// ErrShutdown indicates that graceful shutdown did not complete within
	// the configured timeout.
	ErrShutdown = errors.New("http server shutdown failed")
)
