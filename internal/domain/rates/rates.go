// Package rates holds the pure pricing math: commission on top of an
// owner base rate and the full charge breakdown for a stay. Everything
// here is deterministic integer arithmetic (rounding half up), free of
// side effects and safe for concurrent use.
package rates

import (
	"staybook/internal/domain/shared/fault"
	"staybook/internal/domain/shared/money"
)

var (
	ErrNonPositiveRate   = fault.Validation("rates: rate must be positive")
	ErrNonPositiveNights = fault.Validation("rates: nights must be positive")
	ErrCommissionRange   = fault.Validation("rates: commission percent must be between 0 and 100")
)

// Config carries the platform pricing policy. Values are whole percents;
// nothing in this package hard-codes them per call.
type Config struct {
	ServiceFeePercent        int
	TaxPercent               int
	DefaultCommissionPercent int
	// ShortTermRateThreshold is the nightly rate below which a property
	// without an explicit rental term is treated as short-term.
	ShortTermRateThreshold money.Money
}

// DefaultConfig mirrors the platform defaults: 12% service fee, 8% tax,
// 15% commission, short-term threshold at 150/night.
func DefaultConfig(currency string) Config {
	return Config{
		ServiceFeePercent:        12,
		TaxPercent:               8,
		DefaultCommissionPercent: 15,
		ShortTermRateThreshold:   money.Must(150, currency),
	}
}

// Calculator derives guest-facing rates and charge breakdowns.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

func (c *Calculator) Config() Config { return c.cfg }

// RateCalculation is the commissioned view of an owner base rate.
type RateCalculation struct {
	BaseRate          money.Money
	CommissionPercent int
	CommissionAmount  money.Money
	FinalRate         money.Money
}

// FinalRate turns an owner base rate into the guest-facing nightly rate:
// commission = round(base * percent / 100), final = base + commission.
func (c *Calculator) FinalRate(baseRate money.Money, commissionPercent int) (RateCalculation, error) {
	if !baseRate.IsPositive() {
		return RateCalculation{}, ErrNonPositiveRate
	}
	if commissionPercent < 0 || commissionPercent > 100 {
		return RateCalculation{}, ErrCommissionRange
	}
	commission := baseRate.Percent(commissionPercent)
	final, err := baseRate.Add(commission)
	if err != nil {
		return RateCalculation{}, err
	}
	return RateCalculation{
		BaseRate:          baseRate,
		CommissionPercent: commissionPercent,
		CommissionAmount:  commission,
		FinalRate:         final,
	}, nil
}

// ChargeBreakdown is the full set of figures shown on a booking attempt.
// ServiceFee and Taxes are always derived from the undiscounted subtotal;
// a voucher discount only ever reduces Total.
type ChargeBreakdown struct {
	Nights     int
	Nightly    money.Money
	Subtotal   money.Money
	ServiceFee money.Money
	Taxes      money.Money
	Discount   money.Money
	Total      money.Money
}

// BookingTotal computes subtotal, service fee, taxes and total for a stay.
func (c *Calculator) BookingTotal(nightly money.Money, nights int) (ChargeBreakdown, error) {
	if !nightly.IsPositive() {
		return ChargeBreakdown{}, ErrNonPositiveRate
	}
	if nights <= 0 {
		return ChargeBreakdown{}, ErrNonPositiveNights
	}
	subtotal := nightly.Multiply(int64(nights))
	serviceFee := subtotal.Percent(c.cfg.ServiceFeePercent)
	taxes := subtotal.Percent(c.cfg.TaxPercent)
	total := subtotal
	var err error
	if total, err = total.Add(serviceFee); err != nil {
		return ChargeBreakdown{}, err
	}
	if total, err = total.Add(taxes); err != nil {
		return ChargeBreakdown{}, err
	}
	return ChargeBreakdown{
		Nights:     nights,
		Nightly:    nightly,
		Subtotal:   subtotal,
		ServiceFee: serviceFee,
		Taxes:      taxes,
		Discount:   money.Money{Amount: 0, Currency: nightly.Currency},
		Total:      total,
	}, nil
}

// ApplyDiscount subtracts a voucher discount from the total only, never
// from the subtotal the fee and tax were computed on. The total is
// clamped at zero.
func (b ChargeBreakdown) ApplyDiscount(discount money.Money) (ChargeBreakdown, error) {
	if discount.Amount < 0 {
		return ChargeBreakdown{}, fault.Validation("rates: discount cannot be negative")
	}
	total, err := b.Total.Sub(discount)
	if err != nil {
		return ChargeBreakdown{}, err
	}
	if total.Amount < 0 {
		total.Amount = 0
	}
	b.Discount = discount
	b.Total = total
	return b, nil
}
