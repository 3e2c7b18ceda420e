package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainrates "staybook/internal/domain/rates"
	domainrange "staybook/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "property_id", Value: 1},
		{Key: "status", Value: 1},
		{Key: "range.check_in", Value: 1},
	}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrBookingMissing
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ConfirmedByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	filter := bson.M{"property_id": id, "status": domainbooking.StatusConfirmed}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// SaveNew inserts a confirmed booking, re-running the overlap query in
// the same transaction as the insert. Concurrent overlapping inserts
// serialize on the transaction: the second either sees the first or
// aborts on a write conflict.
func (r *BookingRepository) SaveNew(ctx context.Context, b *domainbooking.Booking) error {
	overlap := bson.M{
		"property_id":     b.PropertyID,
		"status":          domainbooking.StatusConfirmed,
		"range.check_in":  bson.M{"$lt": b.Range.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": b.Range.CheckIn.UnixMilli()},
	}
	cur, err := r.col.Find(ctx, overlap)
	if err != nil {
		return err
	}
	var conflicting []domainbooking.BookingID
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			cur.Close(ctx)
			return err
		}
		conflicting = append(conflicting, domainbooking.BookingID(doc.ID))
	}
	if err := cur.Err(); err != nil {
		cur.Close(ctx)
		return err
	}
	cur.Close(ctx)
	if len(conflicting) > 0 {
		return &domainbooking.ConflictError{PropertyID: b.PropertyID, ConflictingIDs: conflicting}
	}

	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Remove(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrBookingMissing
	}
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, id domainbooking.CustomerID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "booked_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"customer_id": id}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID           string         `bson:"_id"`
	PropertyID   string         `bson:"property_id"`
	CustomerID   string         `bson:"customer_id"`
	Range        rangeDocument  `bson:"range"`
	Guests       int            `bson:"guests"`
	Charges      chargeDocument `bson:"charges"`
	VoucherCode  string         `bson:"voucher_code,omitempty"`
	RateFallback bool           `bson:"rate_fallback"`
	Status       string         `bson:"status"`
	Payment      string         `bson:"payment"`
	BookedAt     int64          `bson:"booked_at"`
	UpdatedAt    int64          `bson:"updated_at"`
	Version      int64          `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type chargeDocument struct {
	Nights     int           `bson:"nights"`
	Nightly    moneyDocument `bson:"nightly"`
	Subtotal   moneyDocument `bson:"subtotal"`
	ServiceFee moneyDocument `bson:"service_fee"`
	Taxes      moneyDocument `bson:"taxes"`
	Discount   moneyDocument `bson:"discount"`
	Total      moneyDocument `bson:"total"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		CustomerID: string(b.CustomerID),
		Range:      rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:     b.Guests,
		Charges: chargeDocument{
			Nights:     b.Charges.Nights,
			Nightly:    newMoneyDocument(b.Charges.Nightly),
			Subtotal:   newMoneyDocument(b.Charges.Subtotal),
			ServiceFee: newMoneyDocument(b.Charges.ServiceFee),
			Taxes:      newMoneyDocument(b.Charges.Taxes),
			Discount:   newMoneyDocument(b.Charges.Discount),
			Total:      newMoneyDocument(b.Charges.Total),
		},
		VoucherCode:  b.VoucherCode,
		RateFallback: b.RateFallback,
		Status:       string(b.Status),
		Payment:      string(b.Payment),
		BookedAt:     b.BookedAt.UnixMilli(),
		UpdatedAt:    b.UpdatedAt.UnixMilli(),
		Version:      b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	dr := domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)}
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		PropertyID: domainproperty.PropertyID(d.PropertyID),
		CustomerID: domainbooking.CustomerID(d.CustomerID),
		Range:      dr,
		Guests:     d.Guests,
		Charges: domainrates.ChargeBreakdown{
			Nights:     d.Charges.Nights,
			Nightly:    d.Charges.Nightly.toMoney(),
			Subtotal:   d.Charges.Subtotal.toMoney(),
			ServiceFee: d.Charges.ServiceFee.toMoney(),
			Taxes:      d.Charges.Taxes.toMoney(),
			Discount:   d.Charges.Discount.toMoney(),
			Total:      d.Charges.Total.toMoney(),
		},
		VoucherCode:  d.VoucherCode,
		RateFallback: d.RateFallback,
		Status:       domainbooking.Status(d.Status),
		Payment:      domainbooking.PaymentStatus(d.Payment),
		BookedAt:     timestampToTime(d.BookedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
