package coupon

import (
	"time"

	"rabaislocal/internal/offer"
)

// Coupon is an issued redemption right tied to one offer and one consumer.
//
// State machine: ACTIVE -> USED (terminal, via redeem, exactly once) and
// ACTIVE -> EXPIRED (terminal, lazily derived when now > valid_until).
// Expiry is never written by a background sweeper; it is evaluated at
// read and redeem time.
type Coupon struct {
	ID         string `json:"id" db:"id"`
	OfferID    string `json:"offer_id" db:"offer_id"`
	ConsumerID string `json:"consumer_id" db:"consumer_id"`

	// UniqueCode is the short human-enterable code, collision-checked at issuance.
	UniqueCode string `json:"unique_code" db:"unique_code"`

	Status Status `json:"status" db:"status"`

	PurchaseDate time.Time  `json:"purchase_date" db:"purchase_date"`
	ValidUntil   *time.Time `json:"valid_until,omitempty" db:"valid_until"`

	RedeemedAt *time.Time `json:"redeemed_at,omitempty" db:"redeemed_at"`
	RedeemedBy string     `json:"redeemed_by,omitempty" db:"redeemed_by"`
}

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusUsed    Status = "USED"
	StatusExpired Status = "EXPIRED"
)

// EffectiveStatus derives the lazy EXPIRED state without writing it.
func (c Coupon) EffectiveStatus(now time.Time) Status {
	if c.Status == StatusActive && c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return StatusExpired
	}
	return c.Status
}

// View is the consumer-facing read model with joined offer fields.
type View struct {
	Coupon

	OfferTitle    string             `json:"offer_title"`
	DiscountType  offer.DiscountType `json:"discount_type"`
	DiscountValue float64            `json:"discount_value,omitempty"`
	MerchantName  string             `json:"merchant_name,omitempty"`
}

// Failure reasons surfaced across the wire contract. The calling layer
// translates these into user-facing messages.
const (
	ReasonOutOfStock         = "OUT_OF_STOCK"
	ReasonOfferInactive      = "OFFER_INACTIVE"
	ReasonOfferExpired       = "OFFER_EXPIRED"
	ReasonOfferNotStarted    = "OFFER_NOT_STARTED"
	ReasonAlreadyClaimed     = "ALREADY_CLAIMED"
	ReasonInsufficientPoints = "INSUFFICIENT_POINTS"
	ReasonNotFound           = "NOT_FOUND"
	ReasonUnauthorized       = "UNAUTHORIZED"
	ReasonAlreadyRedeemed    = "ALREADY_REDEEMED"
	ReasonExpired            = "EXPIRED"
	ReasonUnknown            = "UNKNOWN_ERROR"
)

// ClaimResult is the tagged outcome of a claim attempt.
type ClaimResult struct {
	Success  bool   `json:"success"`
	CouponID string `json:"coupon_id,omitempty"`
	Code     string `json:"code,omitempty"`
	Reason   string `json:"message,omitempty"`
}

// RedeemResult is the tagged outcome of a redemption attempt.
type RedeemResult struct {
	Success       bool               `json:"success"`
	CouponID      string             `json:"coupon_id,omitempty"`
	OfferID       string             `json:"offer_id,omitempty"`
	ConsumerID    string             `json:"-"`
	OfferTitle    string             `json:"offer_title,omitempty"`
	DiscountType  offer.DiscountType `json:"discount_type,omitempty"`
	DiscountValue float64            `json:"discount_value,omitempty"`
	Reason        string             `json:"message,omitempty"`
}
