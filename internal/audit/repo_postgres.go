package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events to the audit_events table. The table carries
// no UPDATE/DELETE paths in this codebase.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, type, actor_user_id, actor_role, ip_address,
			 coupon_id, offer_id, consumer_id, transaction_id,
			 message, metadata, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''),
			NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
			NULLIF($10, ''), NULLIF($11, '')::jsonb, $12)`,
		e.ID, string(e.Type), e.ActorUserID, e.ActorRole, e.IPAddress,
		e.CouponID, e.OfferID, e.ConsumerID, e.TransactionID,
		e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}
