package offer

import "time"

// Offer is a merchant-authored deal.
// Mutated only by its owning merchant (create/update/deactivate); consumers never write it.
type Offer struct {
	ID         string `json:"id" db:"id"`
	MerchantID string `json:"merchant_id" db:"merchant_id"`

	CategoryID  string `json:"category_id,omitempty" db:"category_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	Conditions  string `json:"conditions,omitempty" db:"conditions"`

	// DiscountType discriminates how DiscountValue is interpreted.
	// DiscountValue is meaningful only for PERCENTAGE and FIXED_AMOUNT.
	DiscountType  DiscountType `json:"discount_type" db:"discount_type"`
	DiscountValue float64      `json:"discount_value,omitempty" db:"discount_value"`

	// Validity window. Either bound may be absent.
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`

	ImageURL string `json:"image_url,omitempty" db:"image_url"`

	// CreditCost is the point price a consumer pays to claim this offer.
	CreditCost int64 `json:"credit_cost" db:"credit_cost"`

	IsActive bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
	DiscountTypeBOGO        DiscountType = "BOGO"
	DiscountTypeSpecial     DiscountType = "SPECIAL"
)

func (d DiscountType) Valid() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeFixedAmount, DiscountTypeBOGO, DiscountTypeSpecial:
		return true
	default:
		return false
	}
}

// RequiresValue reports whether the discount kind carries a numeric value.
func (d DiscountType) RequiresValue() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFixedAmount
}

// Inventory is the per-offer remaining-units counter.
// An offer with no inventory row has unlimited redemption units.
//
// Invariant: RemainingUnits >= 0 always; the decrement is a single conditional
// UPDATE so no two concurrent claims can both win the last unit.
type Inventory struct {
	OfferID        string    `json:"offer_id" db:"offer_id"`
	RemainingUnits int64     `json:"remaining_units" db:"remaining_units"`
	TotalUnits     int64     `json:"total_units" db:"total_units"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Category is a catalog grouping for public offer browsing.
type Category struct {
	ID           string `json:"id" db:"id"`
	Slug         string `json:"slug" db:"slug"`
	Name         string `json:"name" db:"name"`
	Description  string `json:"description,omitempty" db:"description"`
	IconName     string `json:"icon_name,omitempty" db:"icon_name"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}
