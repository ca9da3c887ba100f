package wallet

import "time"

// LedgerEntry is an immutable append-only record of a point movement.
//
// Money invariant: a consumer's balance is the sum of their entries. The
// wallet_balances projection is a cache of that sum, updated in the same
// transaction as every insert, and must always reconcile against the ledger.
type LedgerEntry struct {
	ID         string `json:"id" db:"id"`
	ConsumerID string `json:"consumer_id" db:"consumer_id"`

	// Amount is signed: EARN/BONUS positive, REDEEM/EXPIRE negative,
	// ADJUSTMENT either way.
	Amount int64 `json:"amount" db:"amount"`

	EntryType EntryType `json:"entry_type" db:"entry_type"`

	// Optional links back to the event that produced the movement.
	TransactionID string `json:"transaction_id,omitempty" db:"transaction_id"`
	CouponID      string `json:"coupon_id,omitempty" db:"coupon_id"`

	Description string `json:"description,omitempty" db:"description"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EntryType string

const (
	EntryTypeEarn       EntryType = "EARN"
	EntryTypeRedeem     EntryType = "REDEEM"
	EntryTypeBonus      EntryType = "BONUS"
	EntryTypeExpire     EntryType = "EXPIRE"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeEarn, EntryTypeRedeem, EntryTypeBonus, EntryTypeExpire, EntryTypeAdjustment:
		return true
	default:
		return false
	}
}

// Balance is the projection row for one consumer.
type Balance struct {
	ConsumerID string    `json:"consumer_id" db:"consumer_id"`
	Points     int64     `json:"points" db:"points"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Transaction is a point-of-sale event recorded by a merchant terminal,
// distinct from a coupon redemption. One transaction generates its ledger
// entries atomically; neither exists without the other.
type Transaction struct {
	ID         string `json:"id" db:"id"`
	MerchantID string `json:"merchant_id" db:"merchant_id"`
	ConsumerID string `json:"consumer_id" db:"consumer_id"`
	OfferID    string `json:"offer_id,omitempty" db:"offer_id"`

	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`

	BillAmountCents int64 `json:"bill_amount_cents" db:"bill_amount_cents"`
	PointsEarned    int64 `json:"points_earned" db:"points_earned"`
	PointsRedeemed  int64 `json:"points_redeemed" db:"points_redeemed"`

	Status TransactionStatus `json:"status" db:"status"`
	Type   TransactionType   `json:"type" db:"type"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

type TransactionType string

const (
	TransactionTypeEarn   TransactionType = "EARN"
	TransactionTypeRedeem TransactionType = "REDEEM"
	TransactionTypeBoth   TransactionType = "BOTH"
)
