package dto

import domainrates "staybook/internal/domain/rates"

type RateCalculation struct {
	BaseRate          MoneyDTO `json:"base_rate"`
	CommissionPercent int      `json:"commission_percentage"`
	CommissionAmount  MoneyDTO `json:"commission_amount"`
	FinalRate         MoneyDTO `json:"final_rate"`
}

func MapRateCalculation(rc domainrates.RateCalculation) RateCalculation {
	return RateCalculation{
		BaseRate:          MapMoney(rc.BaseRate),
		CommissionPercent: rc.CommissionPercent,
		CommissionAmount:  MapMoney(rc.CommissionAmount),
		FinalRate:         MapMoney(rc.FinalRate),
	}
}
