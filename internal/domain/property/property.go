package property

import (
	"context"
	"strings"
	"time"

	"staybook/internal/domain/rates"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
)

var (
	ErrTitleRequired   = fault.Validation("property: title is required")
	ErrOwnerRequired   = fault.Validation("property: owner is required")
	ErrGuestsLimit     = fault.Validation("property: max guests must be at least 1")
	ErrProposedRate    = fault.Validation("property: proposed rate must be positive")
	ErrInvalidState    = fault.Conflict("property: invalid status transition")
	ErrNotBookable     = fault.Conflict("property: not open for booking")
	ErrPropertyMissing = fault.NotFound("property: not found")
)

type PropertyID string
type OwnerID string

type Status string

const (
	StatusPendingReview   Status = "pending_review"
	StatusPendingContract Status = "pending_contract"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// RentalTerm distinguishes short-term stays from long-term rentals.
type RentalTerm string

const (
	TermUnset     RentalTerm = ""
	TermShortTerm RentalTerm = "short_term"
	TermLongTerm  RentalTerm = "long_term"
)

// Property is the owner-listed unit guests book. FinalRate is always
// derived from BaseRate and CommissionPercent through the rates
// calculator; nothing mutates it directly.
type Property struct {
	ID                PropertyID
	Owner             OwnerID
	Title             string
	ProposedRate      money.Money
	BaseRate          money.Money
	CommissionPercent int
	FinalRate         money.Money
	MaxGuests         int
	MinNights         int
	Term              RentalTerm
	Status            Status
	ContractApproved  bool
	RejectionReason   string
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
}

// RateCalculator derives the commissioned rate; satisfied by the rates
// calculator.
type RateCalculator interface {
	FinalRate(baseRate money.Money, commissionPercent int) (rates.RateCalculation, error)
}

type CreateParams struct {
	ID           PropertyID
	Owner        OwnerID
	Title        string
	ProposedRate money.Money
	MaxGuests    int
	MinNights    int
	Term         RentalTerm
	Now          time.Time
}

func NewProperty(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, fault.Validation("property: id is required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !params.ProposedRate.IsPositive() {
		return nil, ErrProposedRate
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	minNights := params.MinNights
	if minNights < 1 {
		minNights = 1
	}
	now := params.Now.UTC()
	p := &Property{
		ID:           params.ID,
		Owner:        params.Owner,
		Title:        strings.TrimSpace(params.Title),
		ProposedRate: params.ProposedRate,
		MaxGuests:    params.MaxGuests,
		MinNights:    minNights,
		Term:         params.Term,
		Status:       StatusPendingReview,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.Record(PropertySubmitted{PropertyID: p.ID, OwnerID: p.Owner, At: now})
	return p, nil
}

// Approve snapshots the proposed rate as the contracted base rate and
// derives the guest-facing final rate. The property still needs its
// contract approved before it becomes bookable.
func (p *Property) Approve(calc RateCalculator, commissionPercent int, now time.Time) error {
	if p.Status != StatusPendingReview {
		return ErrInvalidState
	}
	rc, err := calc.FinalRate(p.ProposedRate, commissionPercent)
	if err != nil {
		return err
	}
	p.BaseRate = rc.BaseRate
	p.CommissionPercent = rc.CommissionPercent
	p.FinalRate = rc.FinalRate
	p.Status = StatusPendingContract
	p.UpdatedAt = now.UTC()
	p.Record(PropertyApproved{PropertyID: p.ID, FinalRate: p.FinalRate, At: p.UpdatedAt})
	return nil
}

// ApproveContract completes onboarding and opens the property for booking.
func (p *Property) ApproveContract(now time.Time) error {
	if p.Status != StatusPendingContract && p.Status != StatusApproved {
		return ErrInvalidState
	}
	p.Status = StatusApproved
	p.ContractApproved = true
	p.UpdatedAt = now.UTC()
	p.Record(ContractApproved{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

func (p *Property) Reject(reason string, now time.Time) error {
	if p.Status == StatusRejected {
		return nil
	}
	p.Status = StatusRejected
	p.RejectionReason = strings.TrimSpace(reason)
	p.UpdatedAt = now.UTC()
	p.Record(PropertyRejected{PropertyID: p.ID, Reason: p.RejectionReason, At: p.UpdatedAt})
	return nil
}

// ChangeProposedRate updates the owner rate. Once a base rate exists the
// final rate is re-derived so the commission relationship always holds.
func (p *Property) ChangeProposedRate(calc RateCalculator, rate money.Money, now time.Time) error {
	if !rate.IsPositive() {
		return ErrProposedRate
	}
	p.ProposedRate = rate
	if p.BaseRate.IsPositive() {
		rc, err := calc.FinalRate(rate, p.CommissionPercent)
		if err != nil {
			return err
		}
		p.BaseRate = rc.BaseRate
		p.FinalRate = rc.FinalRate
	}
	p.UpdatedAt = now.UTC()
	return nil
}

// ChangeCommission re-derives the final rate for a new commission percent.
func (p *Property) ChangeCommission(calc RateCalculator, commissionPercent int, now time.Time) error {
	if !p.BaseRate.IsPositive() {
		return fault.Conflict("property: commission requires an approved base rate")
	}
	rc, err := calc.FinalRate(p.BaseRate, commissionPercent)
	if err != nil {
		return err
	}
	p.CommissionPercent = rc.CommissionPercent
	p.FinalRate = rc.FinalRate
	p.UpdatedAt = now.UTC()
	return nil
}

// Bookable reports whether guests may book: approved, under contract and
// carrying a positive final rate.
func (p *Property) Bookable() bool {
	return p.Status == StatusApproved && p.ContractApproved && p.FinalRate.IsPositive()
}

// NightlyRate returns the rate a booking is charged at. Properties not
// yet under contract fall back to the owner proposed rate; the fallback
// is flagged so callers never mistake it for the contracted rate.
func (p *Property) NightlyRate() (rate money.Money, fallback bool) {
	if p.FinalRate.IsPositive() {
		return p.FinalRate, false
	}
	return p.ProposedRate, true
}

// ResolveTerm applies the configured product heuristic when no explicit
// rental term is set: nightly rates below the threshold read as
// short-term.
func (p *Property) ResolveTerm(threshold money.Money) RentalTerm {
	if p.Term != TermUnset {
		return p.Term
	}
	rate, _ := p.NightlyRate()
	if rate.Currency == threshold.Currency && rate.Amount < threshold.Amount {
		return TermShortTerm
	}
	return TermLongTerm
}
