package voucher

import (
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/money"
)

type VoucherCreated struct {
	VoucherID  VoucherID
	PropertyID property.PropertyID
	Code       string
	At         time.Time
}

func (e VoucherCreated) EventName() string     { return "voucher.created" }
func (e VoucherCreated) AggregateID() string   { return string(e.VoucherID) }
func (e VoucherCreated) OccurredAt() time.Time { return e.At }

type VoucherRedeemed struct {
	VoucherID VoucherID
	BookingID string
	Amount    money.Money
	At        time.Time
}

func (e VoucherRedeemed) EventName() string     { return "voucher.redeemed" }
func (e VoucherRedeemed) AggregateID() string   { return string(e.VoucherID) }
func (e VoucherRedeemed) OccurredAt() time.Time { return e.At }
