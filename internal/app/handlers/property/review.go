package property

import (
	"context"
	"time"

	"staybook/internal/app/commands"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/clock"
)

const (
	approvePropertyKey = "property.approve"
	approveContractKey = "property.approve_contract"
	rejectPropertyKey  = "property.reject"
)

// ApprovePropertyCommand locks in the base rate and derives the
// guest-facing final rate. A zero CommissionPercent uses the platform
// default.
type ApprovePropertyCommand struct {
	PropertyID        string
	CommissionPercent int
}

func (c ApprovePropertyCommand) Key() string { return approvePropertyKey }

type ApproveContractCommand struct {
	PropertyID string
}

func (c ApproveContractCommand) Key() string { return approveContractKey }

type RejectPropertyCommand struct {
	PropertyID string
	Reason     string
}

func (c RejectPropertyCommand) Key() string { return rejectPropertyKey }

type ReviewResult struct {
	PropertyID string `json:"property_id"`
	Status     string `json:"status"`
	FinalRate  int64  `json:"final_rate"`
}

type ReviewHandler struct {
	UoWFactory uow.UoWFactory
	Rates      policies.RatesPort
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *ReviewHandler) HandleApprove(ctx context.Context, cmd ApprovePropertyCommand) (*ReviewResult, error) {
	return h.review(ctx, cmd.PropertyID, func(p *domainproperty.Property, now time.Time) error {
		percent := cmd.CommissionPercent
		if percent == 0 {
			percent = h.Rates.Config().DefaultCommissionPercent
		}
		return p.Approve(h.Rates, percent, now)
	})
}

func (h *ReviewHandler) HandleContract(ctx context.Context, cmd ApproveContractCommand) (*ReviewResult, error) {
	return h.review(ctx, cmd.PropertyID, func(p *domainproperty.Property, now time.Time) error {
		return p.ApproveContract(now)
	})
}

func (h *ReviewHandler) HandleReject(ctx context.Context, cmd RejectPropertyCommand) (*ReviewResult, error) {
	return h.review(ctx, cmd.PropertyID, func(p *domainproperty.Property, now time.Time) error {
		return p.Reject(cmd.Reason, now)
	})
}

func (h *ReviewHandler) review(ctx context.Context, id string, apply func(*domainproperty.Property, time.Time) error) (*ReviewResult, error) {
	unit, execCtx, cleanup, managed, err := handlersupport.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.PropertyID(id))
	if err != nil {
		return nil, err
	}
	if err := apply(prop, h.now()); err != nil {
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
	return &ReviewResult{
		PropertyID: string(prop.ID),
		Status:     string(prop.Status),
		FinalRate:  prop.FinalRate.Amount,
	}, nil
}

func (h *ReviewHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

type ApproveAdapter struct{ *ReviewHandler }

func (a ApproveAdapter) Handle(ctx context.Context, cmd ApprovePropertyCommand) (*ReviewResult, error) {
	return a.HandleApprove(ctx, cmd)
}

type ContractAdapter struct{ *ReviewHandler }

func (a ContractAdapter) Handle(ctx context.Context, cmd ApproveContractCommand) (*ReviewResult, error) {
	return a.HandleContract(ctx, cmd)
}

type RejectAdapter struct{ *ReviewHandler }

func (a RejectAdapter) Handle(ctx context.Context, cmd RejectPropertyCommand) (*ReviewResult, error) {
	return a.HandleReject(ctx, cmd)
}

var _ commands.Handler[ApprovePropertyCommand, *ReviewResult] = ApproveAdapter{}
var _ commands.Handler[ApproveContractCommand, *ReviewResult] = ContractAdapter{}
var _ commands.Handler[RejectPropertyCommand, *ReviewResult] = RejectAdapter{}
