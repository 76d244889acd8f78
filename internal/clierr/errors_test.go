package clierr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidParameter(t *testing.T) {
	err := InvalidParameter("Job key must have no more than %d segments", 4)

	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.False(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, "Job key must have no more than 4 segments", err.Error())
	assert.Equal(t, ExitInvalidParameter, CodeOf(err))
}

func TestNetwork(t *testing.T) {
	err := Network("scheduler is draining")

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, ExitNetworkError, CodeOf(err))

	var cliErr *Error
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, "scheduler is draining", cliErr.Message)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ExitNetworkError, cause, "cluster %s unreachable", "west")

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "cluster west unreachable: connection refused", err.Error())
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ExitOK},
		{"classified", CommandFailure("boom"), ExitCommandFailure},
		{"wrapped classified", fmt.Errorf("outer: %w", InvalidParameter("bad")), ExitInvalidParameter},
		{"wrapped sentinel", fmt.Errorf("resolve: %w", ErrInvalidParameter), ExitInvalidParameter},
		{"deadline", fmt.Errorf("list: %w", context.DeadlineExceeded), ExitTimeout},
		{"canceled", context.Canceled, ExitCommandFailure},
		{"plain", errors.New("plain"), ExitUnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "invalid parameter", ExitInvalidParameter.String())
	assert.Equal(t, "ok", ExitOK.String())
	assert.Equal(t, "exit 99", Code(99).String())
}
