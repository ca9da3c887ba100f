package points

import (
	"context"
	"errors"
	"time"
)

// Service resolves earn rules and converts bill amounts into points.
//
// Contract:
// - Rule lookup prefers a merchant-scoped rule, falling back to the
//   configured platform default rate.
// - Pure calculation + repository lookups; no wallet writes here.
type Service struct {
	repo  RuleRepository
	clock func() time.Time

	// defaultRate applies when no stored rule matches.
	defaultRate int64
}

func NewService(repo RuleRepository, defaultRate int64) *Service {
	if defaultRate <= 0 {
		defaultRate = 1
	}
	return &Service{repo: repo, clock: time.Now, defaultRate: defaultRate}
}

type EarnRequest struct {
	MerchantID string

	// CategoryID narrows rule resolution when the purchase maps to an offer
	// category; optional.
	CategoryID string

	// BillAmountCents is the purchase total in cents.
	BillAmountCents int64

	// At determines which effective rule to use. If zero, service clock is used.
	At time.Time
}

type EarnResult struct {
	MerchantID string

	RatePerDollar int64
	Points        int64

	// DefaultRateUsed is true when no stored rule matched and the platform
	// default rate was applied.
	DefaultRateUsed bool
}

var ErrInvalidEarnReq = errors.New("invalid earn request")

// CalculateEarn computes the points earned for a bill amount.
func (s *Service) CalculateEarn(ctx context.Context, req EarnRequest) (EarnResult, error) {
	if req.MerchantID == "" {
		return EarnResult{}, ErrInvalidEarnReq
	}
	if req.BillAmountCents <= 0 {
		return EarnResult{}, ErrInvalidEarnReq
	}

	at := req.At
	if at.IsZero() {
		at = s.clock().UTC()
	}

	rate := s.defaultRate
	defaultUsed := true
	if s.repo != nil {
		rule, ok, err := s.repo.FindEarnRule(ctx, req.MerchantID, req.CategoryID, at)
		if err != nil {
			return EarnResult{}, err
		}
		if ok {
			rate = rule.RatePerDollar
			defaultUsed = false
		}
	}

	return EarnResult{
		MerchantID:      req.MerchantID,
		RatePerDollar:   rate,
		Points:          pointsForBill(req.BillAmountCents, rate),
		DefaultRateUsed: defaultUsed,
	}, nil
}

// RuleRepository abstracts earn rule persistence.
// Implementation can be Postgres, cached, etc.
type RuleRepository interface {
	FindEarnRule(ctx context.Context, merchantID, categoryID string, at time.Time) (EarnRule, bool, error)
}

// pointsForBill converts cents into points at a per-dollar rate. Partial
// dollars do not earn; $4.99 at 2/dollar yields 8 points.
func pointsForBill(billCents int64, ratePerDollar int64) int64 {
	if billCents <= 0 || ratePerDollar <= 0 {
		return 0
	}
	return (billCents / 100) * ratePerDollar
}
