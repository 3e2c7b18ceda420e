package policies

import (
	domainrates "staybook/internal/domain/rates"
	"staybook/internal/domain/shared/money"
)

// RatesPort is the orchestrator's view of the rate calculator. The
// domain calculator satisfies it directly; tests substitute fakes.
type RatesPort interface {
	FinalRate(baseRate money.Money, commissionPercent int) (domainrates.RateCalculation, error)
	BookingTotal(nightly money.Money, nights int) (domainrates.ChargeBreakdown, error)
	Config() domainrates.Config
}

var _ RatesPort = (*domainrates.Calculator)(nil)
