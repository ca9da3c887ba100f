package points

import (
	"context"
	"testing"
	"time"
)

func TestPointsForBill(t *testing.T) {
	if got := pointsForBill(100, 1); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := pointsForBill(499, 2); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
	// partial dollars do not earn
	if got := pointsForBill(99, 5); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := pointsForBill(-100, 1); got != 0 {
		t.Fatalf("expected 0 for negative bill, got %d", got)
	}
}

func TestCalculateEarn_DefaultRate(t *testing.T) {
	svc := NewService(&MemoryRepo{}, 2)

	out, err := svc.CalculateEarn(context.Background(), EarnRequest{MerchantID: "m", BillAmountCents: 1000})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !out.DefaultRateUsed {
		t.Fatalf("expected default rate fallback")
	}
	if out.Points != 20 {
		t.Fatalf("expected 20 points, got %d", out.Points)
	}
}

func TestCalculateEarn_MerchantRuleOverrides(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := &MemoryRepo{Rules: []EarnRule{
		{ID: "r1", MerchantID: "m", RatePerDollar: 5, Status: RuleStatusActive, EffectiveFrom: now.Add(-time.Hour)},
	}}
	svc := NewService(repo, 1)

	out, err := svc.CalculateEarn(context.Background(), EarnRequest{MerchantID: "m", BillAmountCents: 1000, At: now})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.DefaultRateUsed {
		t.Fatalf("expected stored rule to apply")
	}
	if out.Points != 50 {
		t.Fatalf("expected 50 points, got %d", out.Points)
	}
}

func TestCalculateEarn_CategoryRuleBeatsMerchantWide(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := &MemoryRepo{Rules: []EarnRule{
		{ID: "r1", MerchantID: "m", RatePerDollar: 2, Status: RuleStatusActive, EffectiveFrom: now.Add(-2 * time.Hour)},
		{ID: "r2", MerchantID: "m", CategoryID: "restaurants", RatePerDollar: 10, Status: RuleStatusActive, EffectiveFrom: now.Add(-time.Hour)},
	}}
	svc := NewService(repo, 1)

	out, err := svc.CalculateEarn(context.Background(), EarnRequest{MerchantID: "m", CategoryID: "restaurants", BillAmountCents: 500, At: now})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.RatePerDollar != 10 || out.Points != 50 {
		t.Fatalf("expected category rule (10/dollar), got %+v", out)
	}

	// Without a category the merchant-wide rule applies.
	out, err = svc.CalculateEarn(context.Background(), EarnRequest{MerchantID: "m", BillAmountCents: 500, At: now})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.RatePerDollar != 2 {
		t.Fatalf("expected merchant-wide rule (2/dollar), got %+v", out)
	}
}

func TestCalculateEarn_RejectsInvalid(t *testing.T) {
	svc := NewService(&MemoryRepo{}, 1)

	if _, err := svc.CalculateEarn(context.Background(), EarnRequest{BillAmountCents: 100}); err != ErrInvalidEarnReq {
		t.Fatalf("expected ErrInvalidEarnReq for missing merchant, got %v", err)
	}
	if _, err := svc.CalculateEarn(context.Background(), EarnRequest{MerchantID: "m"}); err != ErrInvalidEarnReq {
		t.Fatalf("expected ErrInvalidEarnReq for zero bill, got %v", err)
	}
}
