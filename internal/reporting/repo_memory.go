package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"rabaislocal/internal/wallet"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early development.
// It enforces merchant/consumer isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Coupons []CouponRecord
	Ledgers []wallet.LedgerEntry
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCoupons(ctx context.Context, merchantID string, from, to time.Time, offerID string) ([]CouponRecord, error) {
	if merchantID == "" {
		return nil, errors.New("merchant_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CouponRecord, 0)
	for _, c := range r.Coupons {
		if c.MerchantID != merchantID {
			continue
		}
		if !c.ClaimedAt.IsZero() {
			if c.ClaimedAt.Before(from) || !c.ClaimedAt.Before(to) {
				continue
			}
		}
		if offerID != "" && c.OfferID != offerID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) ListLedger(ctx context.Context, consumerID string, from, to time.Time) ([]wallet.LedgerEntry, error) {
	if consumerID == "" {
		return nil, errors.New("consumer_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]wallet.LedgerEntry, 0)
	for _, l := range r.Ledgers {
		if l.ConsumerID != consumerID {
			continue
		}
		if !l.CreatedAt.IsZero() {
			if l.CreatedAt.Before(from) || !l.CreatedAt.Before(to) {
				continue
			}
		}
		out = append(out, l)
	}
	return out, nil
}
