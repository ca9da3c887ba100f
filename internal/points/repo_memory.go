package points

import (
	"context"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
// It supports merchant-scoped rules with optional category narrowing.
//
// NOTE: This is not intended for production; replace with Postgres implementation.
type MemoryRepo struct {
	Rules []EarnRule
}

func (r *MemoryRepo) FindEarnRule(ctx context.Context, merchantID, categoryID string, at time.Time) (EarnRule, bool, error) {
	_ = ctx

	// Prefer the most recent effective rule; category-specific rows beat
	// merchant-wide rows.
	var best EarnRule
	found := false
	bestCategory := false

	for _, p := range r.Rules {
		if p.MerchantID != merchantID {
			continue
		}
		if p.CategoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if p.Status != RuleStatusActive {
			continue
		}
		if at.Before(p.EffectiveFrom) {
			continue
		}
		if p.EffectiveTo != nil && !at.Before(*p.EffectiveTo) {
			continue
		}

		isCategory := p.CategoryID != ""
		switch {
		case !found:
		case isCategory && !bestCategory:
		case isCategory == bestCategory && p.EffectiveFrom.After(best.EffectiveFrom):
		default:
			continue
		}
		best = p
		found = true
		bestCategory = isCategory
	}

	return best, found, nil
}
