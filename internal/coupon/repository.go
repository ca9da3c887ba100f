package coupon

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rabaislocal/internal/offer"
)

// NOTE: This repository assumes the following tables exist:
// - coupons with UNIQUE (unique_code) and UNIQUE (offer_id, consumer_id)
//
// The uniqueness constraints back the collision check and the
// one-coupon-per-consumer-per-offer policy even under concurrent claims.

func codeExistsTx(ctx context.Context, tx *sql.Tx, code string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM coupons WHERE unique_code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

func consumerHasCouponTx(ctx context.Context, tx *sql.Tx, offerID, consumerID string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM coupons WHERE offer_id = $1 AND consumer_id = $2)`,
		offerID, consumerID,
	).Scan(&exists)
	return exists, err
}

func insertCouponTx(ctx context.Context, tx *sql.Tx, c Coupon) error {
	const q = `
INSERT INTO coupons (
  id, offer_id, consumer_id, unique_code, status, purchase_date, valid_until
) VALUES (
  $1,$2,$3,$4,$5,$6,$7
)
`
	_, err := tx.ExecContext(ctx, q,
		c.ID,
		c.OfferID,
		c.ConsumerID,
		c.UniqueCode,
		c.Status,
		c.PurchaseDate,
		c.ValidUntil,
	)
	return err
}

const couponJoinColumns = `
c.id, c.offer_id, c.consumer_id, c.unique_code, c.status,
c.purchase_date, c.valid_until, c.redeemed_at, c.redeemed_by,
o.merchant_id, o.title, o.discount_type, o.discount_value,
m.business_name
`

type couponWithOffer struct {
	Coupon

	OfferMerchantID string
	OfferTitle      string
	DiscountType    offer.DiscountType
	DiscountValue   float64
	MerchantName    string
}

func scanCouponWithOffer(row interface {
	Scan(dest ...any) error
}) (couponWithOffer, error) {
	var out couponWithOffer
	var redeemedBy, merchantName sql.NullString
	var discountValue sql.NullFloat64
	if err := row.Scan(
		&out.ID,
		&out.OfferID,
		&out.ConsumerID,
		&out.UniqueCode,
		&out.Status,
		&out.PurchaseDate,
		&out.ValidUntil,
		&out.RedeemedAt,
		&redeemedBy,
		&out.OfferMerchantID,
		&out.OfferTitle,
		&out.DiscountType,
		&discountValue,
		&merchantName,
	); err != nil {
		return couponWithOffer{}, err
	}
	out.RedeemedBy = redeemedBy.String
	out.DiscountValue = discountValue.Float64
	out.MerchantName = merchantName.String
	return out, nil
}

// findByCodeOrIDTx resolves a coupon by its unique code, falling back to the
// coupon id so terminals can redeem from a scanned identifier.
func findByCodeOrIDTx(ctx context.Context, tx *sql.Tx, codeOrID string) (couponWithOffer, error) {
	q := `
SELECT ` + couponJoinColumns + `
FROM coupons c
JOIN offers o ON o.id = c.offer_id
LEFT JOIN merchants m ON m.id = o.merchant_id
WHERE c.unique_code = $1 OR c.id::text = $1
`
	out, err := scanCouponWithOffer(tx.QueryRowContext(ctx, q, codeOrID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return couponWithOffer{}, ErrNotFound
		}
		return couponWithOffer{}, err
	}
	return out, nil
}

// markUsedTx is the single atomic ACTIVE -> USED transition. The status guard
// in the WHERE clause decides the winner under concurrent redemptions; losers
// observe zero rows affected.
func markUsedTx(ctx context.Context, tx *sql.Tx, couponID, merchantID string, now time.Time) (bool, error) {
	const q = `
UPDATE coupons
SET status = 'USED', redeemed_at = $2, redeemed_by = $3
WHERE id = $1 AND status = 'ACTIVE'
`
	res, err := tx.ExecContext(ctx, q, couponID, now, merchantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func listConsumerCoupons(ctx context.Context, db *sql.DB, consumerID string) ([]couponWithOffer, error) {
	q := `
SELECT ` + couponJoinColumns + `
FROM coupons c
JOIN offers o ON o.id = c.offer_id
LEFT JOIN merchants m ON m.id = o.merchant_id
WHERE c.consumer_id = $1
ORDER BY c.purchase_date DESC
`
	rows, err := db.QueryContext(ctx, q, consumerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]couponWithOffer, 0)
	for rows.Next() {
		c, err := scanCouponWithOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func getConsumerCoupon(ctx context.Context, db *sql.DB, consumerID, couponID string) (couponWithOffer, error) {
	q := `
SELECT ` + couponJoinColumns + `
FROM coupons c
JOIN offers o ON o.id = c.offer_id
LEFT JOIN merchants m ON m.id = o.merchant_id
WHERE c.id::text = $1 AND c.consumer_id = $2
`
	out, err := scanCouponWithOffer(db.QueryRowContext(ctx, q, couponID, consumerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return couponWithOffer{}, ErrNotFound
		}
		return couponWithOffer{}, err
	}
	return out, nil
}
