// Package clipboard adapts the host clipboard for copying OTP tokens.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/TheMichaelB/otpdesk/internal/events"
)

// ErrUnsupported is returned when the host has no clipboard utility.
var ErrUnsupported = errors.New("clipboard not supported on this system")

// System writes to the host clipboard.
type System struct {
	logger      *events.Logger
	unsupported bool
	write       func(string) error
}

// NewSystem creates a clipboard backed by the host.
func NewSystem(logger *events.Logger) *System {
	return &System{
		logger:      logger.WithField("component", "clipboard"),
		unsupported: clipboard.Unsupported,
		write:       clipboard.WriteAll,
	}
}

// Available reports whether a clipboard utility was found.
func (s *System) Available() bool {
	return !s.unsupported
}

// WriteAll replaces the clipboard contents with text.
func (s *System) WriteAll(text string) error {
	if s.unsupported {
		return ErrUnsupported
	}

	if err := s.write(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}

	s.logger.WithField("length", len(text)).Debug("Copied to clipboard")
	return nil
}
