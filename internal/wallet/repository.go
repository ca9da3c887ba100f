package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes the following tables exist:
// - wallet_ledger (immutable append-only)
// - wallet_balances (projection)
// - transactions
//
// wallet_ledger carries no UPDATE/DELETE paths by design.

func ensureBalanceRowTx(ctx context.Context, tx *sql.Tx, consumerID string, now time.Time) error {
	const q = `
INSERT INTO wallet_balances (consumer_id, points, updated_at)
VALUES ($1, 0, $2)
ON CONFLICT (consumer_id) DO NOTHING
`
	_, err := tx.ExecContext(ctx, q, consumerID, now)
	return err
}

// getBalanceForUpdateTx locks the projection row to serialize concurrent
// point movements per consumer. The row is created on first touch.
func getBalanceForUpdateTx(ctx context.Context, tx *sql.Tx, consumerID string, now time.Time) (Balance, error) {
	if err := ensureBalanceRowTx(ctx, tx, consumerID, now); err != nil {
		return Balance{}, err
	}
	const q = `
SELECT consumer_id, points, updated_at
FROM wallet_balances
WHERE consumer_id = $1
FOR UPDATE
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, consumerID).Scan(&b.ConsumerID, &b.Points, &b.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func getBalance(ctx context.Context, db *sql.DB, consumerID string) (Balance, error) {
	const q = `
SELECT consumer_id, points, updated_at
FROM wallet_balances
WHERE consumer_id = $1
`
	var b Balance
	if err := db.QueryRowContext(ctx, q, consumerID).Scan(&b.ConsumerID, &b.Points, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No movements yet: a missing projection row reads as zero.
			return Balance{ConsumerID: consumerID, Points: 0}, nil
		}
		return Balance{}, err
	}
	return b, nil
}

func insertLedgerTx(ctx context.Context, tx *sql.Tx, e LedgerEntry) error {
	const q = `
INSERT INTO wallet_ledger (
  id, consumer_id, amount, entry_type, transaction_id, coupon_id, description, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,NULLIF($7,''),$8
)
`
	_, err := tx.ExecContext(ctx, q,
		e.ID,
		e.ConsumerID,
		e.Amount,
		e.EntryType,
		nullUUID(e.TransactionID),
		nullUUID(e.CouponID),
		e.Description,
		e.CreatedAt,
	)
	return err
}

func applyBalanceDeltaTx(ctx context.Context, tx *sql.Tx, consumerID string, delta int64, now time.Time) (Balance, error) {
	const q = `
INSERT INTO wallet_balances (consumer_id, points, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (consumer_id)
DO UPDATE SET points = wallet_balances.points + EXCLUDED.points,
              updated_at = EXCLUDED.updated_at
RETURNING consumer_id, points, updated_at
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, consumerID, delta, now).Scan(&b.ConsumerID, &b.Points, &b.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func sumLedger(ctx context.Context, db *sql.DB, consumerID string) (int64, error) {
	const q = `
SELECT COALESCE(SUM(amount), 0)
FROM wallet_ledger
WHERE consumer_id = $1
`
	var sum int64
	if err := db.QueryRowContext(ctx, q, consumerID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func listLedger(ctx context.Context, db *sql.DB, consumerID string) ([]LedgerEntry, error) {
	const q = `
SELECT id, consumer_id, amount, entry_type, transaction_id, coupon_id, description, created_at
FROM wallet_ledger
WHERE consumer_id = $1
ORDER BY created_at DESC
`
	rows, err := db.QueryContext(ctx, q, consumerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LedgerEntry, 0)
	for rows.Next() {
		var e LedgerEntry
		var transactionID, couponID, description sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.ConsumerID,
			&e.Amount,
			&e.EntryType,
			&transactionID,
			&couponID,
			&description,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.TransactionID = transactionID.String
		e.CouponID = couponID.String
		e.Description = description.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertTransactionTx(ctx context.Context, tx *sql.Tx, t Transaction) error {
	const q = `
INSERT INTO transactions (
  id, merchant_id, consumer_id, offer_id, transaction_date,
  bill_amount_cents, points_earned, points_redeemed, status, type, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := tx.ExecContext(ctx, q,
		t.ID,
		t.MerchantID,
		t.ConsumerID,
		nullUUID(t.OfferID),
		t.TransactionDate,
		t.BillAmountCents,
		t.PointsEarned,
		t.PointsRedeemed,
		t.Status,
		t.Type,
		t.CreatedAt,
	)
	return err
}

// nullUUID maps the empty string to SQL NULL for optional uuid columns.
// NULLIF on an untyped parameter resolves to text, which Postgres will not
// assign to a uuid column, so the null decision happens client-side.
func nullUUID(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func listTransactions(ctx context.Context, db *sql.DB, where string, args ...any) ([]Transaction, error) {
	q := `
SELECT id, merchant_id, consumer_id, offer_id, transaction_date,
       bill_amount_cents, points_earned, points_redeemed, status, type, created_at
FROM transactions ` + where
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		var offerID sql.NullString
		if err := rows.Scan(
			&t.ID,
			&t.MerchantID,
			&t.ConsumerID,
			&offerID,
			&t.TransactionDate,
			&t.BillAmountCents,
			&t.PointsEarned,
			&t.PointsRedeemed,
			&t.Status,
			&t.Type,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.OfferID = offerID.String
		out = append(out, t)
	}
	return out, rows.Err()
}
