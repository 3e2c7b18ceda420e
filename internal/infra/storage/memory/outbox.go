package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	infraoutbox "staybook/internal/infra/outbox"
)

// sharedScope buckets records staged outside any unit of work.
type sharedScope struct{}

// Outbox buffers event records in memory. Records stage per unit of
// work, so concurrent commands cannot flush or discard each other's
// events; Flush makes the current scope's records claimable by the
// worker.
type Outbox struct {
	mu      sync.Mutex
	staged  map[any][]appoutbox.EventRecord
	ready   []infraoutbox.EventDocument
	claimed map[string]infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{
		staged:  make(map[any][]appoutbox.EventRecord),
		claimed: make(map[string]infraoutbox.EventDocument),
	}
}

// scopeOf identifies the staging bucket for the calling command.
func scopeOf(ctx context.Context) any {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit
	}
	return sharedScope{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	scope := scopeOf(ctx)
	o.staged[scope] = append(o.staged[scope], record)
	return nil
}

// Discard drops records staged by a command that failed before commit.
// Only the calling command's scope is touched.
func (o *Outbox) Discard(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.staged, scopeOf(ctx))
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	scope := scopeOf(ctx)
	now := time.Now().UTC()
	for _, rec := range o.staged[scope] {
		o.ready = append(o.ready, infraoutbox.EventDocument{
			ID:          rec.ID,
			Name:        rec.Name,
			Payload:     rec.Payload,
			OccurredAt:  rec.OccurredAt,
			Aggregate:   rec.Aggregate,
			Headers:     rec.Headers,
			NextAttempt: now,
		})
	}
	delete(o.staged, scope)
	return nil
}

// Claim pops the oldest publishable record.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for i := range o.ready {
		doc := o.ready[i]
		if doc.NextAttempt.After(now) {
			continue
		}
		o.ready = append(o.ready[:i], o.ready[i+1:]...)
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		o.claimed[doc.ID] = doc
		return &doc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
	return nil
}

// MarkFailed requeues the record for a later attempt.
func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	doc, ok := o.claimed[id]
	if !ok {
		return nil
	}
	delete(o.claimed, id)
	doc.Attempts++
	doc.NextAttempt = next
	doc.LastError = errMsg
	o.ready = append(o.ready, doc)
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Store = (*Outbox)(nil)
