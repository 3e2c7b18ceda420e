package property

import (
	"time"

	"staybook/internal/domain/shared/money"
)

type PropertySubmitted struct {
	PropertyID PropertyID
	OwnerID    OwnerID
	At         time.Time
}

func (e PropertySubmitted) EventName() string     { return "property.submitted" }
func (e PropertySubmitted) AggregateID() string   { return string(e.PropertyID) }
func (e PropertySubmitted) OccurredAt() time.Time { return e.At }

type PropertyApproved struct {
	PropertyID PropertyID
	FinalRate  money.Money
	At         time.Time
}

func (e PropertyApproved) EventName() string     { return "property.approved" }
func (e PropertyApproved) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyApproved) OccurredAt() time.Time { return e.At }

type ContractApproved struct {
	PropertyID PropertyID
	At         time.Time
}

func (e ContractApproved) EventName() string     { return "property.contract_approved" }
func (e ContractApproved) AggregateID() string   { return string(e.PropertyID) }
func (e ContractApproved) OccurredAt() time.Time { return e.At }

type PropertyRejected struct {
	PropertyID PropertyID
	Reason     string
	At         time.Time
}

func (e PropertyRejected) EventName() string     { return "property.rejected" }
func (e PropertyRejected) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyRejected) OccurredAt() time.Time { return e.At }
