// Package response validates scheduler response envelopes and converts
// refusals and transport failures into classified command errors.
package response

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// LogMessage is the message of the record emitted for every envelope.
const LogMessage = "Response from scheduler"

// Check logs the envelope and returns its result if the code is OK.
// Any other code becomes a *clierr.Error with the given classification and
// the scheduler's message. The record is written before the error is returned.
func Check[T any](logger *slog.Logger, cluster string, resp *scheduler.Response[T], code clierr.Code) (T, error) {
	var zero T
	if resp == nil {
		return zero, clierr.CommandFailure("no response from scheduler for cluster %s", cluster)
	}

	logger.Info(LogMessage,
		"cluster", cluster,
		"code", resp.Code.String(),
		"message", resp.Message)

	if resp.Code != scheduler.ResponseOK {
		return zero, &clierr.Error{Code: code, Message: resp.Message}
	}
	return resp.Result, nil
}

// Transport classifies an error returned by the client itself, as opposed to
// a refusal carried in an envelope. An expired deadline is a timeout, a
// cancelled context keeps its cause and anything else is a network failure.
func Transport(cluster, op string, err error) error {
	if err == nil {
		return nil
	}
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return clierr.Wrap(clierr.ExitTimeout, err, "%s on cluster %s timed out", op, cluster)
	case errors.Is(err, context.Canceled):
		return clierr.Wrap(clierr.ExitCommandFailure, err, "%s on cluster %s was cancelled", op, cluster)
	}
	return clierr.Wrap(clierr.ExitNetworkError, err, "%s on cluster %s failed", op, cluster)
}
