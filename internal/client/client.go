package client

import (
	"fmt"

	"github.com/TheMichaelB/otpdesk/internal/clipboard"
	"github.com/TheMichaelB/otpdesk/internal/config"
	"github.com/TheMichaelB/otpdesk/internal/events"
	"github.com/TheMichaelB/otpdesk/internal/services/otp"
	"github.com/TheMichaelB/otpdesk/internal/transport"
	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

// Client provides the high-level API for otpdesk operations.
type Client struct {
	OTP  *otp.Service
	Page *workflow.Page

	config    *config.Config
	logger    *events.Logger
	transport transport.Transport
}

// Option customises a Client.
type Option func(*options)

type options struct {
	transport transport.Transport
	clock     workflow.Clock
	clipboard workflow.Clipboard
}

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithClock replaces the timer source used for banner and copy expiry.
func WithClock(c workflow.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithClipboard replaces the system clipboard.
func WithClipboard(c workflow.Clipboard) Option {
	return func(o *options) { o.clipboard = c }
}

// New creates a new otpdesk client.
func New(cfg *config.Config, logger *events.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	// Create transport
	if o.transport == nil {
		o.transport = transport.NewTransport(cfg, logger)
	}

	// Create clipboard
	if o.clipboard == nil {
		if sys := clipboard.NewSystem(logger); sys.Available() {
			o.clipboard = sys
		} else {
			logger.Debug("System clipboard unavailable")
		}
	}

	otpService := otp.NewService(o.transport, logger)

	pageOpts := workflow.OptionsFromConfig(&cfg.UI)
	pageOpts.Clock = o.clock
	pageOpts.Clipboard = o.clipboard

	return &Client{
		OTP:       otpService,
		Page:      workflow.NewPage(otpService, pageOpts, logger),
		config:    cfg,
		logger:    logger,
		transport: o.transport,
	}, nil
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *config.Config {
	return c.config
}

// Close releases transport resources.
func (c *Client) Close() error {
	c.logger.Debug("Closing client")
	return c.transport.Close()
}
