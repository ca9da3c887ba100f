package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CouponRecord is the reporting projection of one issued coupon.
// It carries the merchant ID denormalized from the offer so reads
// can enforce merchant scoping without another join.

type CouponRecord struct {
	CouponID   string     `json:"coupon_id"`
	OfferID    string     `json:"offer_id"`
	MerchantID string     `json:"merchant_id"`
	Status     string     `json:"status"`
	ClaimedAt  time.Time  `json:"claimed_at"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// CouponsSummaryRequest requests aggregated coupon metrics for one merchant.
// Merchant isolation: MerchantID is required.

type CouponsSummaryRequest struct {
	MerchantID string    `json:"merchant_id"`
	Range      TimeRange `json:"range"`
	OfferID    string    `json:"offer_id,omitempty"`
}

type CouponsSummary struct {
	MerchantID string `json:"merchant_id"`
	OfferID    string `json:"offer_id,omitempty"`

	TotalClaimed int `json:"total_claimed"`
	Redeemed     int `json:"redeemed"`
	Expired      int `json:"expired"`
	Active       int `json:"active"`

	RedemptionRate float64 `json:"redemption_rate"`
}

// PointsSummaryRequest requests aggregated point movements for one consumer.
// Points are derived from immutable wallet ledger entries.

type PointsSummaryRequest struct {
	ConsumerID string    `json:"consumer_id"`
	Range      TimeRange `json:"range"`
}

type PointsSummary struct {
	ConsumerID string `json:"consumer_id"`

	TotalEarned   int64 `json:"total_earned"`
	TotalRedeemed int64 `json:"total_redeemed"`
	TotalExpired  int64 `json:"total_expired"`
	AdminAdjust   int64 `json:"admin_adjust"`
	NetDelta      int64 `json:"net_delta"`
}
