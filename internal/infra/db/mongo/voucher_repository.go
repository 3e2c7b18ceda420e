package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "staybook/internal/domain/property"
	domainvoucher "staybook/internal/domain/voucher"
)

type VoucherRepository struct {
	col    *mongo.Collection
	usages *mongo.Collection
}

func NewVoucherRepository(db *mongo.Database) *VoucherRepository {
	col := db.Collection("agg_voucher")
	codeIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), codeIdx)
	usages := db.Collection("voucher_usages")
	usageIdx := mongo.IndexModel{Keys: bson.D{{Key: "voucher_id", Value: 1}}}
	_, _ = usages.Indexes().CreateOne(context.Background(), usageIdx)
	return &VoucherRepository{col: col, usages: usages}
}

func (r *VoucherRepository) ByID(ctx context.Context, id domainvoucher.VoucherID) (*domainvoucher.Voucher, error) {
	var doc voucherDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainvoucher.ErrVoucherMissing
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VoucherRepository) ByCode(ctx context.Context, code string) (*domainvoucher.Voucher, error) {
	var doc voucherDocument
	filter := bson.M{"code": domainvoucher.CanonicalCode(code)}
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainvoucher.ErrVoucherMissing
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *VoucherRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"code": domainvoucher.CanonicalCode(code)})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *VoucherRepository) Save(ctx context.Context, v *domainvoucher.Voucher) error {
	doc := newVoucherDocument(v)
	filter := bson.M{"_id": doc.ID, "version": v.Version}
	doc.Version = v.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainvoucher.ErrDuplicateCode
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	v.Version = doc.Version
	return nil
}

// Redeem is the atomic compare-and-increment: the filter only matches
// while used_count is below the limit, so two racing redeemers of the
// last slot cannot both succeed.
func (r *VoucherRepository) Redeem(ctx context.Context, id domainvoucher.VoucherID, usage domainvoucher.Usage) error {
	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}},
	}
	update := bson.M{
		"$inc": bson.M{"used_count": 1, "version": 1},
	}
	res := r.col.FindOneAndUpdate(ctx, filter, update)
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			count, cerr := r.col.CountDocuments(ctx, bson.M{"_id": id})
			if cerr != nil {
				return cerr
			}
			if count == 0 {
				return domainvoucher.ErrVoucherMissing
			}
			return domainvoucher.ErrLimitReached
		}
		return err
	}
	_, err := r.usages.InsertOne(ctx, newUsageDocument(usage))
	return err
}

// Release undoes a redemption whose booking write failed.
func (r *VoucherRepository) Release(ctx context.Context, id domainvoucher.VoucherID, usageID domainvoucher.UsageID) error {
	res, err := r.usages.DeleteOne(ctx, bson.M{"_id": usageID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainvoucher.ErrVoucherMissing
	}
	filter := bson.M{"_id": id, "used_count": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"used_count": -1, "version": 1}}
	_, err = r.col.UpdateOne(ctx, filter, update)
	return err
}

func (r *VoucherRepository) ListByVoucher(ctx context.Context, id domainvoucher.VoucherID) ([]domainvoucher.Usage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	cur, err := r.usages.Find(ctx, bson.M{"voucher_id": id}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domainvoucher.Usage
	for cur.Next(ctx) {
		var doc usageDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toUsage())
	}
	return out, cur.Err()
}

type voucherDocument struct {
	ID         string        `bson:"_id"`
	Code       string        `bson:"code"`
	Owner      string        `bson:"owner"`
	PropertyID string        `bson:"property_id"`
	Type       string        `bson:"type"`
	Percent    int           `bson:"percent"`
	Amount     moneyDocument `bson:"amount"`
	Expiration int64         `bson:"expiration"`
	UsageLimit int           `bson:"usage_limit"`
	UsedCount  int           `bson:"used_count"`
	IsActive   bool          `bson:"is_active"`
	CreatedAt  int64         `bson:"created_at"`
	UpdatedAt  int64         `bson:"updated_at"`
	Version    int64         `bson:"version"`
}

type usageDocument struct {
	ID         string        `bson:"_id"`
	VoucherID  string        `bson:"voucher_id"`
	BookingID  string        `bson:"booking_id"`
	CustomerID string        `bson:"customer_id"`
	Amount     moneyDocument `bson:"amount"`
	At         int64         `bson:"at"`
}

func newVoucherDocument(v *domainvoucher.Voucher) voucherDocument {
	return voucherDocument{
		ID:         string(v.ID),
		Code:       v.Code,
		Owner:      string(v.Owner),
		PropertyID: string(v.PropertyID),
		Type:       string(v.Type),
		Percent:    v.Percent,
		Amount:     newMoneyDocument(v.Amount),
		Expiration: v.Expiration.UnixMilli(),
		UsageLimit: v.UsageLimit,
		UsedCount:  v.UsedCount,
		IsActive:   v.IsActive,
		CreatedAt:  v.CreatedAt.UnixMilli(),
		UpdatedAt:  v.UpdatedAt.UnixMilli(),
		Version:    v.Version,
	}
}

func (d voucherDocument) toAggregate() *domainvoucher.Voucher {
	return &domainvoucher.Voucher{
		ID:         domainvoucher.VoucherID(d.ID),
		Code:       d.Code,
		Owner:      domainproperty.OwnerID(d.Owner),
		PropertyID: domainproperty.PropertyID(d.PropertyID),
		Type:       domainvoucher.DiscountType(d.Type),
		Percent:    d.Percent,
		Amount:     d.Amount.toMoney(),
		Expiration: timestampToTime(d.Expiration),
		UsageLimit: d.UsageLimit,
		UsedCount:  d.UsedCount,
		IsActive:   d.IsActive,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}

func newUsageDocument(u domainvoucher.Usage) usageDocument {
	return usageDocument{
		ID:         string(u.ID),
		VoucherID:  string(u.VoucherID),
		BookingID:  u.BookingID,
		CustomerID: u.CustomerID,
		Amount:     newMoneyDocument(u.Amount),
		At:         u.At.UnixMilli(),
	}
}

func (d usageDocument) toUsage() domainvoucher.Usage {
	return domainvoucher.Usage{
		ID:         domainvoucher.UsageID(d.ID),
		VoucherID:  domainvoucher.VoucherID(d.VoucherID),
		BookingID:  d.BookingID,
		CustomerID: d.CustomerID,
		Amount:     d.Amount.toMoney(),
		At:         timestampToTime(d.At),
	}
}

var _ domainvoucher.Repository = (*VoucherRepository)(nil)
var _ domainvoucher.UsageRepository = (*VoucherRepository)(nil)
