package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("agg_property")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainproperty.ErrPropertyMissing
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

type propertyDocument struct {
	ID                string        `bson:"_id"`
	Owner             string        `bson:"owner"`
	Title             string        `bson:"title"`
	ProposedRate      moneyDocument `bson:"proposed_rate"`
	BaseRate          moneyDocument `bson:"base_rate"`
	CommissionPercent int           `bson:"commission_percent"`
	FinalRate         moneyDocument `bson:"final_rate"`
	MaxGuests         int           `bson:"max_guests"`
	MinNights         int           `bson:"min_nights"`
	Term              string        `bson:"term"`
	Status            string        `bson:"status"`
	ContractApproved  bool          `bson:"contract_approved"`
	RejectionReason   string        `bson:"rejection_reason,omitempty"`
	CreatedAt         int64         `bson:"created_at"`
	UpdatedAt         int64         `bson:"updated_at"`
	Version           int64         `bson:"version"`
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:                string(p.ID),
		Owner:             string(p.Owner),
		Title:             p.Title,
		ProposedRate:      newMoneyDocument(p.ProposedRate),
		BaseRate:          newMoneyDocument(p.BaseRate),
		CommissionPercent: p.CommissionPercent,
		FinalRate:         newMoneyDocument(p.FinalRate),
		MaxGuests:         p.MaxGuests,
		MinNights:         p.MinNights,
		Term:              string(p.Term),
		Status:            string(p.Status),
		ContractApproved:  p.ContractApproved,
		RejectionReason:   p.RejectionReason,
		CreatedAt:         p.CreatedAt.UnixMilli(),
		UpdatedAt:         p.UpdatedAt.UnixMilli(),
		Version:           p.Version,
	}
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	return &domainproperty.Property{
		ID:                domainproperty.PropertyID(d.ID),
		Owner:             domainproperty.OwnerID(d.Owner),
		Title:             d.Title,
		ProposedRate:      d.ProposedRate.toMoney(),
		BaseRate:          d.BaseRate.toMoney(),
		CommissionPercent: d.CommissionPercent,
		FinalRate:         d.FinalRate.toMoney(),
		MaxGuests:         d.MaxGuests,
		MinNights:         d.MinNights,
		Term:              domainproperty.RentalTerm(d.Term),
		Status:            domainproperty.Status(d.Status),
		ContractApproved:  d.ContractApproved,
		RejectionReason:   d.RejectionReason,
		CreatedAt:         timestampToTime(d.CreatedAt),
		UpdatedAt:         timestampToTime(d.UpdatedAt),
		Version:           d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)
