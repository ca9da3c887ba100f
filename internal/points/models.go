package points

import "time"

// Earn rules express how a bill amount converts into loyalty points.
// Amounts are expressed in minor units (cents) using int64.

// EarnRule is a merchant- or platform-level earn rate with an effective
// window. Merchant rows override the platform default while effective.
type EarnRule struct {
	ID string `json:"id" db:"id"`

	// MerchantID is empty for the platform-wide default rule.
	MerchantID string `json:"merchant_id,omitempty" db:"merchant_id"`

	// CategoryID optionally narrows the rule to one offer category.
	CategoryID string `json:"category_id,omitempty" db:"category_id"`

	// RatePerDollar is the number of points earned per whole dollar spent.
	RatePerDollar int64 `json:"rate_per_dollar" db:"rate_per_dollar"`

	// Effective window for the rule.
	EffectiveFrom time.Time  `json:"effective_from" db:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty" db:"effective_to"`

	Status RuleStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)
