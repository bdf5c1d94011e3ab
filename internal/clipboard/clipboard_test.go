package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/otpdesk/internal/events"
)

func TestSystemWriteAll(t *testing.T) {
	var got string
	s := &System{
		logger: events.Discard(),
		write:  func(text string) error { got = text; return nil },
	}

	require.NoError(t, s.WriteAll("123456"))
	assert.Equal(t, "123456", got)
	assert.True(t, s.Available())
}

func TestSystemWriteAllError(t *testing.T) {
	s := &System{
		logger: events.Discard(),
		write:  func(string) error { return errors.New("exit status 1") },
	}

	err := s.WriteAll("123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write clipboard")
}

func TestSystemUnsupported(t *testing.T) {
	called := false
	s := &System{
		logger:      events.Discard(),
		unsupported: true,
		write:       func(string) error { called = true; return nil },
	}

	assert.False(t, s.Available())
	assert.ErrorIs(t, s.WriteAll("123456"), ErrUnsupported)
	assert.False(t, called)
}
