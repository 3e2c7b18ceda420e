package voucher

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/clock"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
	domainvoucher "staybook/internal/domain/voucher"
)

const createVoucherKey = "voucher.create"

type CreateVoucherCommand struct {
	CommandID    string
	Code         string
	OwnerID      string
	PropertyID   string
	DiscountType string
	Percent      int
	Amount       int64
	Currency     string
	Expiration   time.Time
	UsageLimit   int
}

func (c CreateVoucherCommand) Key() string { return createVoucherKey }

func (c CreateVoucherCommand) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return fault.Validation("voucher: code is required")
	}
	if strings.TrimSpace(c.PropertyID) == "" {
		return fault.Validation("voucher: property id is required")
	}
	return nil
}

type CreateVoucherResult struct {
	Voucher dto.VoucherSummary `json:"voucher"`
}

type CreateVoucherHandler struct {
	UoWFactory uow.UoWFactory
	Bounds     domainvoucher.Bounds
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateVoucherHandler) Handle(ctx context.Context, cmd CreateVoucherCommand) (*CreateVoucherResult, error) {
	unit, execCtx, cleanup, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	now := h.now()

	// Vouchers are scoped to one property, which must exist.
	prop, err := unit.Properties().ByID(execCtx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}

	// Codes are unique across the whole platform, not just per property.
	exists, err := unit.Vouchers().CodeExists(execCtx, domainvoucher.CanonicalCode(cmd.Code))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainvoucher.ErrDuplicateCode
	}

	var amount money.Money
	if cmd.Amount != 0 || cmd.Currency != "" {
		amount, err = money.New(cmd.Amount, cmd.Currency)
		if err != nil {
			return nil, err
		}
	}
	id := cmd.CommandID
	if id == "" {
		id = uuid.NewString()
	}
	v, err := domainvoucher.NewVoucher(domainvoucher.CreateParams{
		ID:         domainvoucher.VoucherID(id),
		Code:       cmd.Code,
		Owner:      domainproperty.OwnerID(cmd.OwnerID),
		PropertyID: prop.ID,
		Type:       domainvoucher.DiscountType(cmd.DiscountType),
		Percent:    cmd.Percent,
		Amount:     amount,
		Expiration: cmd.Expiration,
		UsageLimit: cmd.UsageLimit,
		Now:        now,
	}, h.Bounds)
	if err != nil {
		return nil, err
	}
	if err := unit.Vouchers().Save(execCtx, v); err != nil {
		return nil, err
	}

	pending := v.PendingEvents()
	v.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return nil, err
		}
	}
	return &CreateVoucherResult{Voucher: dto.MapVoucherSummary(v)}, nil
}

func (h *CreateVoucherHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CreateVoucherCommand, *CreateVoucherResult] = (*CreateVoucherHandler)(nil)
