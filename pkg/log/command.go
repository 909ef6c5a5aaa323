package log

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CommandScope creates a child logger tagged with the command path and a
// fresh run ID, stores it in ctx, and returns a finish func that logs the
// command's completion with its latency and error, if any.
func CommandScope(ctx context.Context, logger zerolog.Logger, command string) (context.Context, func(err error)) {
	start := time.Now()

	child := logger.With().
		Str(FieldCommand, command).
		Str(FieldRunID, uuid.NewString()).
		Logger()

	ctx = WithLogger(ctx, child)

	return ctx, func(err error) {
		latency := time.Since(start)
		var evt *zerolog.Event
		if err != nil {
			evt = child.Error().Err(err)
		} else {
			evt = child.Debug()
		}
		evt.Float64(FieldLatency, float64(latency.Microseconds())/1000.0).Msg("command finished")
	}
}
