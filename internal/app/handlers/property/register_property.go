package property

import (
	"context"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/money"
)

const registerPropertyKey = "property.register"

type RegisterPropertyCommand struct {
	CommandID    string
	OwnerID      string
	Title        string
	ProposedRate int64
	Currency     string
	MaxGuests    int
	MinNights    int
	RentalTerm   string
}

func (c RegisterPropertyCommand) Key() string { return registerPropertyKey }

type RegisterPropertyResult struct {
	PropertyID string `json:"property_id"`
	Status     string `json:"status"`
}

type RegisterPropertyHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder

	// DefaultMinNights applies when the registration leaves the
	// minimum stay unset.
	DefaultMinNights int
}

func (h *RegisterPropertyHandler) Handle(ctx context.Context, cmd RegisterPropertyCommand) (*RegisterPropertyResult, error) {
	unit, execCtx, cleanup, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rate, err := money.New(cmd.ProposedRate, cmd.Currency)
	if err != nil {
		return nil, err
	}
	id := cmd.CommandID
	if id == "" {
		id = uuid.NewString()
	}
	minNights := cmd.MinNights
	if minNights <= 0 {
		minNights = h.DefaultMinNights
	}
	prop, err := domainproperty.NewProperty(domainproperty.CreateParams{
		ID:           domainproperty.PropertyID(id),
		Owner:        domainproperty.OwnerID(cmd.OwnerID),
		Title:        cmd.Title,
		ProposedRate: rate,
		MaxGuests:    cmd.MaxGuests,
		MinNights:    minNights,
		Term:         domainproperty.RentalTerm(cmd.RentalTerm),
		Now:          h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(execCtx, prop); err != nil {
		return nil, err
	}

	pending := prop.PendingEvents()
	prop.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
	}
	return &RegisterPropertyResult{PropertyID: string(prop.ID), Status: string(prop.Status)}, nil
}

func (h *RegisterPropertyHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RegisterPropertyCommand, *RegisterPropertyResult] = (*RegisterPropertyHandler)(nil)
