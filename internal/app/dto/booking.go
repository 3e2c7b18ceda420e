package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
	domainrates "staybook/internal/domain/rates"
	"staybook/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

// ChargeBreakdownDTO is the per-attempt charge figures shown to guests.
type ChargeBreakdownDTO struct {
	Nights     int      `json:"nights"`
	Nightly    MoneyDTO `json:"rate_per_night"`
	Subtotal   MoneyDTO `json:"subtotal"`
	ServiceFee MoneyDTO `json:"service_fee"`
	Taxes      MoneyDTO `json:"taxes"`
	Discount   MoneyDTO `json:"discount"`
	Total      MoneyDTO `json:"total"`
}

func MapChargeBreakdown(b domainrates.ChargeBreakdown) ChargeBreakdownDTO {
	return ChargeBreakdownDTO{
		Nights:     b.Nights,
		Nightly:    MapMoney(b.Nightly),
		Subtotal:   MapMoney(b.Subtotal),
		ServiceFee: MapMoney(b.ServiceFee),
		Taxes:      MapMoney(b.Taxes),
		Discount:   MapMoney(b.Discount),
		Total:      MapMoney(b.Total),
	}
}

type BookingSummary struct {
	ID            string             `json:"id"`
	PropertyID    string             `json:"property_id"`
	CustomerID    string             `json:"customer_id"`
	CheckIn       time.Time          `json:"check_in"`
	CheckOut      time.Time          `json:"check_out"`
	Guests        int                `json:"guests"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	Charges       ChargeBreakdownDTO `json:"charges"`
	VoucherCode   string             `json:"voucher_code,omitempty"`
	RateFallback  bool               `json:"rate_fallback"`
	BookedAt      time.Time          `json:"booked_at"`
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		CustomerID:    string(b.CustomerID),
		CheckIn:       b.Range.CheckIn,
		CheckOut:      b.Range.CheckOut,
		Guests:        b.Guests,
		Status:        string(b.Status),
		PaymentStatus: string(b.Payment),
		Charges:       MapChargeBreakdown(b.Charges),
		VoucherCode:   b.VoucherCode,
		RateFallback:  b.RateFallback,
		BookedAt:      b.BookedAt,
	}
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}
