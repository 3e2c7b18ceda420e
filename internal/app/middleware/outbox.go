package middleware

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
)

// OutboxFlush releases buffered event records for publication once the
// command succeeded. On failure any partially staged records are
// discarded when the outbox supports it, so the next command cannot
// flush another command's events.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				if discarder, ok := box.(interface {
					Discard(context.Context) error
				}); ok {
					_ = discarder.Discard(ctx)
				}
				return nil, err
			}
			if flushErr := box.Flush(ctx); flushErr != nil {
				return nil, flushErr
			}
			return res, nil
		})
	}
}
