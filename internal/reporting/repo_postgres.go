package reporting

import (
	"context"
	"database/sql"
	"time"

	"rabaislocal/internal/wallet"
)

// PostgresRepo reads reporting projections straight from the transactional
// tables. Aggregation happens in the service, volumes here are per-merchant.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListCoupons(ctx context.Context, merchantID string, from, to time.Time, offerID string) ([]CouponRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.offer_id, o.merchant_id, c.status,
		       c.purchase_date, c.valid_until, c.redeemed_at
		FROM coupons c
		JOIN offers o ON o.id = c.offer_id
		WHERE o.merchant_id = $1
		  AND c.purchase_date >= $2 AND c.purchase_date < $3
		  AND ($4 = '' OR c.offer_id::text = $4)
		ORDER BY c.purchase_date`,
		merchantID, from, to, offerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CouponRecord, 0)
	for rows.Next() {
		var c CouponRecord
		if err := rows.Scan(&c.CouponID, &c.OfferID, &c.MerchantID, &c.Status,
			&c.ClaimedAt, &c.ValidUntil, &c.RedeemedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListLedger(ctx context.Context, consumerID string, from, to time.Time) ([]wallet.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, consumer_id, amount, entry_type,
		       COALESCE(transaction_id::text, ''), COALESCE(coupon_id::text, ''),
		       COALESCE(description, ''), created_at
		FROM wallet_ledger
		WHERE consumer_id = $1
		  AND created_at >= $2 AND created_at < $3
		ORDER BY created_at`,
		consumerID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]wallet.LedgerEntry, 0)
	for rows.Next() {
		var e wallet.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ConsumerID, &e.Amount, &e.EntryType,
			&e.TransactionID, &e.CouponID, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
