package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/infra/storage/memory"
)

type echoCommand struct {
	IdemKey string
	Value   string
	Fail    bool
}

func (c echoCommand) Key() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string { return c.IdemKey }

func (c echoCommand) ResultPrototype() any { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
	Calls int    `json:"calls"`
}

type echoHandler struct {
	calls int
}

func (h *echoHandler) Handle(ctx context.Context, cmd echoCommand) (*echoResult, error) {
	h.calls++
	if cmd.Fail {
		return nil, errors.New("echo: refused")
	}
	return &echoResult{Value: cmd.Value, Calls: h.calls}, nil
}

func newEchoBus(handler *echoHandler) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler[echoCommand, *echoResult](base, "test.echo", handler)
	return middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(), nil))
}

func TestIdempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("replay returns the recorded result without re-running", func(t *testing.T) {
		handler := &echoHandler{}
		bus := newEchoBus(handler)

		first, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1", Value: "hello"})
		require.NoError(t, err)
		assert.Equal(t, 1, first.Calls)

		second, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1", Value: "changed"})
		require.NoError(t, err)
		assert.Equal(t, "hello", second.Value)
		assert.Equal(t, 1, second.Calls)
		assert.Equal(t, 1, handler.calls)
	})

	t.Run("distinct keys run independently", func(t *testing.T) {
		handler := &echoHandler{}
		bus := newEchoBus(handler)

		_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1", Value: "a"})
		require.NoError(t, err)
		_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k2", Value: "b"})
		require.NoError(t, err)
		assert.Equal(t, 2, handler.calls)
	})

	t.Run("empty key bypasses the store", func(t *testing.T) {
		handler := &echoHandler{}
		bus := newEchoBus(handler)

		for i := 0; i < 2; i++ {
			_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{Value: "x"})
			require.NoError(t, err)
		}
		assert.Equal(t, 2, handler.calls)
	})

	t.Run("replayed failures stay failures", func(t *testing.T) {
		handler := &echoHandler{}
		bus := newEchoBus(handler)

		_, err := commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1", Fail: true})
		require.EqualError(t, err, "echo: refused")

		_, err = commands.Dispatch[echoCommand, *echoResult](ctx, bus, echoCommand{IdemKey: "k1"})
		require.EqualError(t, err, "echo: refused")
		assert.Equal(t, 1, handler.calls)
	})
}
