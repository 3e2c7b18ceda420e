package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainvoucher "staybook/internal/domain/voucher"
)

// PropertyRepository is an in-memory implementation backed by a map.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{
		items: make(map[domainproperty.PropertyID]*domainproperty.Property),
	}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrPropertyMissing
	}
	cp := *prop
	return &cp, nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Version++
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)

// BookingRepository keeps bookings in memory and serializes inserts per
// property so overlapping ranges cannot both commit.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking

	propMu sync.Mutex
	locks  map[domainproperty.PropertyID]*sync.Mutex
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.BookingID]*domainbooking.Booking),
		locks: make(map[domainproperty.PropertyID]*sync.Mutex),
	}
}

func (r *BookingRepository) propertyLock(id domainproperty.PropertyID) *sync.Mutex {
	r.propMu.Lock()
	defer r.propMu.Unlock()
	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingMissing
	}
	cp := *b
	return &cp, nil
}

func (r *BookingRepository) ConfirmedByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.confirmedLocked(id), nil
}

func (r *BookingRepository) confirmedLocked(id domainproperty.PropertyID) []*domainbooking.Booking {
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.PropertyID != id || b.Status != domainbooking.StatusConfirmed {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.CheckIn.Before(out[j].Range.CheckIn)
	})
	return out
}

// SaveNew inserts a booking after re-checking the no-overlap constraint
// under the property lock. Two goroutines racing for the same dates
// serialize here; the loser gets a *ConflictError.
func (r *BookingRepository) SaveNew(ctx context.Context, b *domainbooking.Booking) error {
	lock := r.propertyLock(b.PropertyID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	confirmed := r.confirmedLocked(b.PropertyID)
	if ids := domainbooking.Conflicts(b.Range, confirmed); len(ids) > 0 {
		return &domainbooking.ConflictError{PropertyID: b.PropertyID, ConflictingIDs: ids}
	}
	b.Version++
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID]; !ok {
		return domainbooking.ErrBookingMissing
	}
	b.Version++
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *BookingRepository) Remove(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrBookingMissing
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, id domainbooking.CustomerID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.CustomerID != id {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BookedAt.After(out[j].BookedAt)
	})
	return out, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)

// VoucherRepository stores vouchers and their usage records. Redeem and
// Release run under one mutex so the usage counter never races past the
// limit.
type VoucherRepository struct {
	mu     sync.RWMutex
	items  map[domainvoucher.VoucherID]*domainvoucher.Voucher
	byCode map[string]domainvoucher.VoucherID
	usages map[domainvoucher.VoucherID][]domainvoucher.Usage
}

func NewVoucherRepository() *VoucherRepository {
	return &VoucherRepository{
		items:  make(map[domainvoucher.VoucherID]*domainvoucher.Voucher),
		byCode: make(map[string]domainvoucher.VoucherID),
		usages: make(map[domainvoucher.VoucherID][]domainvoucher.Usage),
	}
}

func (r *VoucherRepository) ByID(ctx context.Context, id domainvoucher.VoucherID) (*domainvoucher.Voucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	if !ok {
		return nil, domainvoucher.ErrVoucherMissing
	}
	cp := *v
	return &cp, nil
}

func (r *VoucherRepository) ByCode(ctx context.Context, code string) (*domainvoucher.Voucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[domainvoucher.CanonicalCode(code)]
	if !ok {
		return nil, domainvoucher.ErrVoucherMissing
	}
	cp := *r.items[id]
	return &cp, nil
}

func (r *VoucherRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[domainvoucher.CanonicalCode(code)]
	return ok, nil
}

func (r *VoucherRepository) Save(ctx context.Context, v *domainvoucher.Voucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.Version++
	cp := *v
	r.items[v.ID] = &cp
	r.byCode[v.Code] = v.ID
	return nil
}

// Redeem bumps the usage counter when and only when it is below the
// limit, appending the usage record in the same critical section.
func (r *VoucherRepository) Redeem(ctx context.Context, id domainvoucher.VoucherID, usage domainvoucher.Usage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return domainvoucher.ErrVoucherMissing
	}
	if v.UsedCount >= v.UsageLimit {
		return domainvoucher.ErrLimitReached
	}
	v.UsedCount++
	v.Version++
	r.usages[id] = append(r.usages[id], usage)
	return nil
}

// Release undoes a redemption whose booking never committed.
func (r *VoucherRepository) Release(ctx context.Context, id domainvoucher.VoucherID, usageID domainvoucher.UsageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return domainvoucher.ErrVoucherMissing
	}
	usages := r.usages[id]
	for i, u := range usages {
		if u.ID != usageID {
			continue
		}
		r.usages[id] = append(usages[:i], usages[i+1:]...)
		if v.UsedCount > 0 {
			v.UsedCount--
		}
		v.Version++
		return nil
	}
	return domainvoucher.ErrVoucherMissing
}

func (r *VoucherRepository) ListByVoucher(ctx context.Context, id domainvoucher.VoucherID) ([]domainvoucher.Usage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainvoucher.Usage, len(r.usages[id]))
	copy(out, r.usages[id])
	return out, nil
}

var _ domainvoucher.Repository = (*VoucherRepository)(nil)
var _ domainvoucher.UsageRepository = (*VoucherRepository)(nil)
