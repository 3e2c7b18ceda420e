package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
)

func scopedContext(t *testing.T) context.Context {
	t.Helper()
	factory := Factory{
		PropertyRepo: NewPropertyRepository(),
		BookingRepo:  NewBookingRepository(),
		VoucherRepo:  NewVoucherRepository(),
		UsageRepo:    NewVoucherRepository(),
	}
	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return uow.ContextWithUnitOfWork(context.Background(), unit)
}

func record(id string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       "booking.confirmed",
		Aggregate:  "bk-" + id,
		Payload:    []byte(`{}`),
		OccurredAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func claimedIDs(t *testing.T, box *Outbox) []string {
	t.Helper()
	var ids []string
	for {
		doc, err := box.Claim(context.Background(), "w-1")
		require.NoError(t, err)
		if doc == nil {
			return ids
		}
		ids = append(ids, doc.ID)
	}
}

func TestOutboxScoping(t *testing.T) {
	t.Run("flush releases only the calling command's records", func(t *testing.T) {
		box := NewOutbox()
		ctxA := scopedContext(t)
		ctxB := scopedContext(t)
		require.NoError(t, box.Add(ctxA, record("ev-a")))
		require.NoError(t, box.Add(ctxB, record("ev-b")))

		require.NoError(t, box.Flush(ctxA))
		assert.Equal(t, []string{"ev-a"}, claimedIDs(t, box))

		require.NoError(t, box.Flush(ctxB))
		assert.Equal(t, []string{"ev-b"}, claimedIDs(t, box))
	})

	t.Run("discard leaves concurrent commands untouched", func(t *testing.T) {
		box := NewOutbox()
		ctxA := scopedContext(t)
		ctxB := scopedContext(t)
		require.NoError(t, box.Add(ctxA, record("ev-a")))
		require.NoError(t, box.Add(ctxB, record("ev-b")))

		require.NoError(t, box.Discard(ctxA))
		require.NoError(t, box.Flush(ctxA))
		require.NoError(t, box.Flush(ctxB))
		assert.Equal(t, []string{"ev-b"}, claimedIDs(t, box))
	})

	t.Run("records staged without a unit share one bucket", func(t *testing.T) {
		box := NewOutbox()
		ctx := context.Background()
		require.NoError(t, box.Add(ctx, record("ev-1")))
		require.NoError(t, box.Flush(ctx))
		assert.Equal(t, []string{"ev-1"}, claimedIDs(t, box))
	})
}

func TestOutboxRetry(t *testing.T) {
	box := NewOutbox()
	ctx := scopedContext(t)
	require.NoError(t, box.Add(ctx, record("ev-1")))
	require.NoError(t, box.Flush(ctx))

	doc, err := box.Claim(context.Background(), "w-1")
	require.NoError(t, err)
	require.NotNil(t, doc)

	require.NoError(t, box.MarkFailed(context.Background(), doc.ID, time.Now().Add(-time.Second), "broker down"))
	doc, err = box.Claim(context.Background(), "w-1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.Attempts)
	assert.Equal(t, "broker down", doc.LastError)

	require.NoError(t, box.MarkSent(context.Background(), doc.ID))
	assert.Empty(t, claimedIDs(t, box))
}
