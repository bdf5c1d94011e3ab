package transport

import (
	"context"

	"github.com/TheMichaelB/otpdesk/internal/config"
	"github.com/TheMichaelB/otpdesk/internal/events"
)

// Transport is the request/response channel to the OTP API.
type Transport interface {
	// PostJSON sends payload as JSON and decodes a 2xx body into out (nil skips decoding).
	PostJSON(ctx context.Context, path string, payload interface{}, out interface{}) error

	// GetJSON fetches path and decodes a 2xx body into out.
	GetJSON(ctx context.Context, path string, out interface{}) error

	// Lifecycle
	Close() error
}

// NewTransport creates the default HTTP transport.
func NewTransport(cfg *config.Config, logger *events.Logger) Transport {
	return NewHTTPClient(&cfg.API, &cfg.Dev, logger)
}
