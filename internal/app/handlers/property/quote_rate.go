package property

import (
	"context"

	"staybook/internal/app/dto"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	"staybook/internal/domain/shared/money"
)

const quoteFinalRateKey = "property.quote_rate"

// QuoteFinalRateQuery previews the guest-facing rate for a candidate
// base rate before a property is submitted. A zero CommissionPercent
// uses the platform default.
type QuoteFinalRateQuery struct {
	BaseRate          int64
	Currency          string
	CommissionPercent int
}

func (q QuoteFinalRateQuery) Key() string { return quoteFinalRateKey }

type QuoteFinalRateHandler struct {
	Rates policies.RatesPort
}

func (h *QuoteFinalRateHandler) Handle(ctx context.Context, q QuoteFinalRateQuery) (dto.RateCalculation, error) {
	base, err := money.New(q.BaseRate, q.Currency)
	if err != nil {
		return dto.RateCalculation{}, err
	}
	percent := q.CommissionPercent
	if percent == 0 {
		percent = h.Rates.Config().DefaultCommissionPercent
	}
	calc, err := h.Rates.FinalRate(base, percent)
	if err != nil {
		return dto.RateCalculation{}, err
	}
	return dto.MapRateCalculation(calc), nil
}

var _ queries.Handler[QuoteFinalRateQuery, dto.RateCalculation] = (*QuoteFinalRateHandler)(nil)
