package middleware

import (
	"context"

	"staybook/internal/app/commands"
)

// ValidatableCommand lets a command reject malformed input before any
// store or transaction is touched.
type ValidatableCommand interface {
	commands.Command
	Validate() error
}

// Validation short-circuits dispatch when the command fails its own
// shape check.
func Validation() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if v, ok := cmd.(ValidatableCommand); ok {
				if err := v.Validate(); err != nil {
					return nil, err
				}
			}
			return nextFn(ctx, cmd)
		})
	}
}
