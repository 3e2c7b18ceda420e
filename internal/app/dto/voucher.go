package dto

import (
	"time"

	domainvoucher "staybook/internal/domain/voucher"
)

type VoucherSummary struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	PropertyID   string    `json:"property_id"`
	DiscountType string    `json:"discount_type"`
	Percent      int       `json:"percent,omitempty"`
	Amount       *MoneyDTO `json:"amount,omitempty"`
	Expiration   time.Time `json:"expiration"`
	UsageLimit   int       `json:"usage_limit"`
	UsedCount    int       `json:"used_count"`
	IsActive     bool      `json:"is_active"`
}

func MapVoucherSummary(v *domainvoucher.Voucher) VoucherSummary {
	summary := VoucherSummary{
		ID:           string(v.ID),
		Code:         v.Code,
		PropertyID:   string(v.PropertyID),
		DiscountType: string(v.Type),
		Percent:      v.Percent,
		Expiration:   v.Expiration,
		UsageLimit:   v.UsageLimit,
		UsedCount:    v.UsedCount,
		IsActive:     v.IsActive,
	}
	if v.Type == domainvoucher.DiscountFixed {
		amount := MapMoney(v.Amount)
		summary.Amount = &amount
	}
	return summary
}

// VoucherValidation is the tagged outcome of a validation attempt.
type VoucherValidation struct {
	OK       bool      `json:"ok"`
	Reason   string    `json:"reason,omitempty"`
	Discount *MoneyDTO `json:"discount,omitempty"`
}

func MapVoucherValidation(res domainvoucher.ValidationResult) VoucherValidation {
	out := VoucherValidation{OK: res.OK, Reason: string(res.Reason)}
	if res.OK {
		discount := MapMoney(res.Discount)
		out.Discount = &discount
	}
	return out
}
