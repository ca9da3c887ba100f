package reporting

import (
	"context"
	"errors"
	"time"

	"rabaislocal/internal/wallet"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce merchant/consumer filtering.
// - Implementations should query immutable sources when possible
//   (wallet ledger, coupon rows, audit events).

type Repository interface {
	ListCoupons(ctx context.Context, merchantID string, from, to time.Time, offerID string) ([]CouponRecord, error)
	ListLedger(ctx context.Context, consumerID string, from, to time.Time) ([]wallet.LedgerEntry, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// CouponsSummary aggregates a merchant's issued coupons over a time window.
// Expiry is derived at read time: an ACTIVE row past its valid_until counts
// as expired even if no write ever flipped its stored status.
func (s *Service) CouponsSummary(ctx context.Context, req CouponsSummaryRequest) (CouponsSummary, error) {
	if req.MerchantID == "" {
		return CouponsSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CouponsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CouponsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListCoupons(ctx, req.MerchantID, req.Range.From, req.Range.To, req.OfferID)
	if err != nil {
		return CouponsSummary{}, err
	}

	now := s.clock().UTC()
	out := CouponsSummary{MerchantID: req.MerchantID, OfferID: req.OfferID}
	for _, c := range rows {
		out.TotalClaimed++
		switch {
		case c.Status == "USED":
			out.Redeemed++
		case c.Status == "EXPIRED":
			out.Expired++
		case c.ValidUntil != nil && !c.ValidUntil.After(now):
			out.Expired++
		default:
			out.Active++
		}
	}
	if out.TotalClaimed > 0 {
		out.RedemptionRate = float64(out.Redeemed) / float64(out.TotalClaimed)
	}
	return out, nil
}

// PointsSummary aggregates one consumer's ledger entries over a time window.
func (s *Service) PointsSummary(ctx context.Context, req PointsSummaryRequest) (PointsSummary, error) {
	if req.ConsumerID == "" {
		return PointsSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return PointsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return PointsSummary{}, errors.New("reporting: repository not configured")
	}

	entries, err := s.repo.ListLedger(ctx, req.ConsumerID, req.Range.From, req.Range.To)
	if err != nil {
		return PointsSummary{}, err
	}

	out := PointsSummary{ConsumerID: req.ConsumerID}
	for _, e := range entries {
		out.NetDelta += e.Amount
		switch e.EntryType {
		case wallet.EntryTypeEarn, wallet.EntryTypeBonus:
			out.TotalEarned += e.Amount
		case wallet.EntryTypeRedeem:
			out.TotalRedeemed += -e.Amount
		case wallet.EntryTypeExpire:
			out.TotalExpired += -e.Amount
		case wallet.EntryTypeAdjustment:
			out.AdminAdjust += e.Amount
		}
	}
	return out, nil
}
