package reporting

import (
	"context"
	"testing"
	"time"

	"rabaislocal/internal/wallet"
)

func TestReporting_MerchantIsolation(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Coupons = []CouponRecord{
		{CouponID: "c1", MerchantID: "m1", OfferID: "o1", Status: "USED", ClaimedAt: now},
		{CouponID: "c2", MerchantID: "m2", OfferID: "o2", Status: "USED", ClaimedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.CouponsSummary(context.Background(), CouponsSummaryRequest{MerchantID: "m1", Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalClaimed != 1 {
		t.Fatalf("expected 1 coupon, got %d", out.TotalClaimed)
	}
}

func TestReporting_CouponsSummaryDerivesExpiry(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	past := now.Add(-time.Minute)
	future := now.Add(24 * time.Hour)
	repo.Coupons = []CouponRecord{
		{CouponID: "c1", MerchantID: "m", Status: "USED", ClaimedAt: now},
		{CouponID: "c2", MerchantID: "m", Status: "ACTIVE", ClaimedAt: now, ValidUntil: &future},
		{CouponID: "c3", MerchantID: "m", Status: "ACTIVE", ClaimedAt: now, ValidUntil: &past},
		{CouponID: "c4", MerchantID: "m", Status: "EXPIRED", ClaimedAt: now},
	}

	svc := NewService(repo)
	svc.clock = func() time.Time { return now }

	out, err := svc.CouponsSummary(context.Background(), CouponsSummaryRequest{MerchantID: "m", Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalClaimed != 4 || out.Redeemed != 1 || out.Expired != 2 || out.Active != 1 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.RedemptionRate != 0.25 {
		t.Fatalf("expected redemption rate 0.25, got %v", out.RedemptionRate)
	}
}

func TestReporting_PointsSummaryAggregates(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()
	repo.Ledgers = []wallet.LedgerEntry{
		{ID: "l1", ConsumerID: "u", Amount: 100, EntryType: wallet.EntryTypeEarn, CreatedAt: now},
		{ID: "l2", ConsumerID: "u", Amount: 50, EntryType: wallet.EntryTypeBonus, CreatedAt: now},
		{ID: "l3", ConsumerID: "u", Amount: -30, EntryType: wallet.EntryTypeRedeem, CreatedAt: now},
		{ID: "l4", ConsumerID: "u", Amount: -5, EntryType: wallet.EntryTypeExpire, CreatedAt: now},
		{ID: "l5", ConsumerID: "u", Amount: 25, EntryType: wallet.EntryTypeAdjustment, CreatedAt: now},
		{ID: "l6", ConsumerID: "other", Amount: 999, EntryType: wallet.EntryTypeEarn, CreatedAt: now},
	}
	svc := NewService(repo)

	out, err := svc.PointsSummary(context.Background(), PointsSummaryRequest{ConsumerID: "u", Range: TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalEarned != 150 {
		t.Fatalf("expected earned 150, got %d", out.TotalEarned)
	}
	if out.TotalRedeemed != 30 || out.TotalExpired != 5 || out.AdminAdjust != 25 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.NetDelta != 140 {
		t.Fatalf("expected net 140, got %d", out.NetDelta)
	}
}

func TestReporting_RejectsInvalidRange(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	now := time.Unix(1700000000, 0).UTC()

	if _, err := svc.CouponsSummary(context.Background(), CouponsSummaryRequest{MerchantID: "m"}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest for zero range, got %v", err)
	}
	if _, err := svc.PointsSummary(context.Background(), PointsSummaryRequest{ConsumerID: "u", Range: TimeRange{From: now, To: now}}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest for empty range, got %v", err)
	}
}
