package offer

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repository assumes the following tables exist:
// - offers
// - offer_inventory (absent row = unlimited units)
// - categories
//
// remaining_units carries a CHECK (remaining_units >= 0) constraint as a
// second line of defense behind the conditional decrement.

const offerColumns = `
id, merchant_id, category_id, title, description, conditions,
discount_type, discount_value, start_date, end_date, image_url,
credit_cost, is_active, created_at, updated_at
`

func scanOffer(row interface {
	Scan(dest ...any) error
}) (Offer, error) {
	var o Offer
	var categoryID, description, conditions, imageURL sql.NullString
	var discountValue sql.NullFloat64
	if err := row.Scan(
		&o.ID,
		&o.MerchantID,
		&categoryID,
		&o.Title,
		&description,
		&conditions,
		&o.DiscountType,
		&discountValue,
		&o.StartDate,
		&o.EndDate,
		&imageURL,
		&o.CreditCost,
		&o.IsActive,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return Offer{}, err
	}
	o.CategoryID = categoryID.String
	o.Description = description.String
	o.Conditions = conditions.String
	o.ImageURL = imageURL.String
	o.DiscountValue = discountValue.Float64
	return o, nil
}

func getOffer(ctx context.Context, db *sql.DB, offerID string) (Offer, error) {
	q := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	o, err := scanOffer(db.QueryRowContext(ctx, q, offerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Offer{}, ErrNotFound
		}
		return Offer{}, err
	}
	return o, nil
}

// GetTx reads the offer inside the caller's transaction without locking it.
// Claim paths prefer this plus the conditional inventory decrement over row
// locks; losers of the decrement race get a typed failure.
func GetTx(ctx context.Context, tx *sql.Tx, offerID string) (Offer, error) {
	q := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	o, err := scanOffer(tx.QueryRowContext(ctx, q, offerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Offer{}, ErrNotFound
		}
		return Offer{}, err
	}
	return o, nil
}

// GetForUpdateTx locks the offer row to serialize claim checks against
// concurrent merchant mutations (deactivation, window edits).
func GetForUpdateTx(ctx context.Context, tx *sql.Tx, offerID string) (Offer, error) {
	q := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1 FOR UPDATE`
	o, err := scanOffer(tx.QueryRowContext(ctx, q, offerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Offer{}, ErrNotFound
		}
		return Offer{}, err
	}
	return o, nil
}

func insertOffer(ctx context.Context, db *sql.DB, o Offer) error {
	const q = `
INSERT INTO offers (
  id, merchant_id, category_id, title, description, conditions,
  discount_type, discount_value, start_date, end_date, image_url,
  credit_cost, is_active, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,NULLIF($5,''),NULLIF($6,''),$7,$8,$9,$10,NULLIF($11,''),$12,$13,$14,$15
)
`
	_, err := db.ExecContext(ctx, q,
		o.ID,
		o.MerchantID,
		nullUUID(o.CategoryID),
		o.Title,
		o.Description,
		o.Conditions,
		o.DiscountType,
		nullFloat(o.DiscountValue, o.DiscountType.RequiresValue()),
		o.StartDate,
		o.EndDate,
		o.ImageURL,
		o.CreditCost,
		o.IsActive,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

func updateOffer(ctx context.Context, db *sql.DB, o Offer) error {
	const q = `
UPDATE offers SET
  category_id = $3,
  title = $4,
  description = NULLIF($5,''),
  conditions = NULLIF($6,''),
  discount_type = $7,
  discount_value = $8,
  start_date = $9,
  end_date = $10,
  image_url = NULLIF($11,''),
  credit_cost = $12,
  is_active = $13,
  updated_at = $14
WHERE id = $1 AND merchant_id = $2
`
	res, err := db.ExecContext(ctx, q,
		o.ID,
		o.MerchantID,
		nullUUID(o.CategoryID),
		o.Title,
		o.Description,
		o.Conditions,
		o.DiscountType,
		nullFloat(o.DiscountValue, o.DiscountType.RequiresValue()),
		o.StartDate,
		o.EndDate,
		o.ImageURL,
		o.CreditCost,
		o.IsActive,
		o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func setOfferActive(ctx context.Context, db *sql.DB, merchantID, offerID string, active bool, now time.Time) error {
	const q = `UPDATE offers SET is_active = $3, updated_at = $4 WHERE id = $1 AND merchant_id = $2`
	res, err := db.ExecContext(ctx, q, offerID, merchantID, active, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteOffer(ctx context.Context, db *sql.DB, merchantID, offerID string) error {
	const q = `DELETE FROM offers WHERE id = $1 AND merchant_id = $2`
	res, err := db.ExecContext(ctx, q, offerID, merchantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func listOffers(ctx context.Context, db *sql.DB, where string, args ...any) ([]Offer, error) {
	q := `SELECT ` + offerColumns + ` FROM offers ` + where
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func listCategories(ctx context.Context, db *sql.DB) ([]Category, error) {
	const q = `
SELECT id, slug, name, description, icon_name, display_order
FROM categories
ORDER BY display_order ASC
`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		var description, iconName sql.NullString
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &description, &iconName, &c.DisplayOrder); err != nil {
			return nil, err
		}
		c.Description = description.String
		c.IconName = iconName.String
		out = append(out, c)
	}
	return out, rows.Err()
}

/* ===================== INVENTORY ===================== */

// ReserveUnitTx performs the atomic compare-and-decrement that guards offer
// inventory. Exactly one concurrent caller can take the last unit; the rest
// observe zero rows affected and get ErrOutOfStock. An offer without an
// inventory row is treated as unlimited.
func ReserveUnitTx(ctx context.Context, tx *sql.Tx, offerID string, now time.Time) error {
	const q = `
UPDATE offer_inventory
SET remaining_units = remaining_units - 1, updated_at = $2
WHERE offer_id = $1 AND remaining_units > 0
`
	res, err := tx.ExecContext(ctx, q, offerID, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// No row decremented: distinguish "tracked but empty" from "untracked".
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM offer_inventory WHERE offer_id = $1)`, offerID,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrOutOfStock
	}
	return nil
}

// ReleaseUnitTx is the compensating increment for a reservation whose coupon
// never materialized. The counter never exceeds total_units.
func ReleaseUnitTx(ctx context.Context, tx *sql.Tx, offerID string, now time.Time) error {
	const q = `
UPDATE offer_inventory
SET remaining_units = LEAST(total_units, remaining_units + 1), updated_at = $2
WHERE offer_id = $1
`
	_, err := tx.ExecContext(ctx, q, offerID, now)
	return err
}

func getInventory(ctx context.Context, db *sql.DB, offerID string) (Inventory, bool, error) {
	const q = `
SELECT offer_id, remaining_units, total_units, updated_at
FROM offer_inventory
WHERE offer_id = $1
`
	var inv Inventory
	err := db.QueryRowContext(ctx, q, offerID).Scan(&inv.OfferID, &inv.RemainingUnits, &inv.TotalUnits, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Inventory{}, false, nil
		}
		return Inventory{}, false, err
	}
	return inv, true, nil
}

func upsertInventory(ctx context.Context, db *sql.DB, offerID string, units int64, now time.Time) error {
	const q = `
INSERT INTO offer_inventory (offer_id, remaining_units, total_units, updated_at)
VALUES ($1,$2,$2,$3)
ON CONFLICT (offer_id)
DO UPDATE SET remaining_units = EXCLUDED.remaining_units,
              total_units = EXCLUDED.total_units,
              updated_at = EXCLUDED.updated_at
`
	_, err := db.ExecContext(ctx, q, offerID, units, now)
	return err
}

func nullFloat(v float64, keep bool) any {
	if !keep {
		return nil
	}
	return v
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
