package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rabaislocal/pkg/utils"

	"github.com/google/uuid"
)

// Service owns point-balance integrity.
//
// Money invariants:
// - No balance updates without a ledger entry
// - Ledger is append-only (immutable)
// - All point operations must be executed in a DB transaction
//
// Balance strategy:
// - Balance is stored in a projection table (wallet_balances) updated atomically
//   alongside ledger inserts, and is always reconcilable by replaying the ledger.
type Service struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrBalanceDrift means the projection disagrees with the ledger sum.
	// This is a correctness bug, never a transient state.
	ErrBalanceDrift = errors.New("balance projection does not match ledger")
)

type RecordTransactionRequest struct {
	OfferID         string `json:"offer_id,omitempty"`
	BillAmountCents int64  `json:"bill_amount_cents"`
	PointsEarned    int64  `json:"points_earned"`
	PointsRedeemed  int64  `json:"points_redeemed"`
}

func (r RecordTransactionRequest) validate() error {
	if r.BillAmountCents < 0 || r.PointsEarned < 0 || r.PointsRedeemed < 0 {
		return ErrInvalidArgument
	}
	if r.PointsEarned == 0 && r.PointsRedeemed == 0 {
		return ErrInvalidArgument
	}
	return nil
}

func (r RecordTransactionRequest) transactionType() TransactionType {
	switch {
	case r.PointsEarned > 0 && r.PointsRedeemed > 0:
		return TransactionTypeBoth
	case r.PointsRedeemed > 0:
		return TransactionTypeRedeem
	default:
		return TransactionTypeEarn
	}
}

// RecordTransaction creates a point-of-sale Transaction and its ledger
// counterpart as one atomic unit. A Transaction never exists without its
// ledger entries, and vice versa.
func (s *Service) RecordTransaction(ctx context.Context, merchantID, consumerID string, req RecordTransactionRequest) (Transaction, []LedgerEntry, error) {
	if merchantID == "" || consumerID == "" {
		return Transaction{}, nil, ErrInvalidArgument
	}
	if err := req.validate(); err != nil {
		return Transaction{}, nil, err
	}

	now := s.clock().UTC()
	txn := Transaction{
		ID:              uuid.NewString(),
		MerchantID:      merchantID,
		ConsumerID:      consumerID,
		OfferID:         req.OfferID,
		TransactionDate: now,
		BillAmountCents: req.BillAmountCents,
		PointsEarned:    req.PointsEarned,
		PointsRedeemed:  req.PointsRedeemed,
		Status:          TransactionStatusCompleted,
		Type:            req.transactionType(),
		CreatedAt:       now,
	}

	var entries []LedgerEntry

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		bal, err := getBalanceForUpdateTx(ctx, tx, consumerID, now)
		if err != nil {
			return err
		}
		if req.PointsRedeemed > 0 && bal.Points < req.PointsRedeemed {
			return ErrInsufficientPoints
		}

		if err := insertTransactionTx(ctx, tx, txn); err != nil {
			return err
		}

		if req.PointsEarned > 0 {
			e := LedgerEntry{
				ID:            uuid.NewString(),
				ConsumerID:    consumerID,
				Amount:        req.PointsEarned,
				EntryType:     EntryTypeEarn,
				TransactionID: txn.ID,
				Description:   fmt.Sprintf("points earned on %d cent bill", req.BillAmountCents),
				CreatedAt:     now,
			}
			if err := insertLedgerTx(ctx, tx, e); err != nil {
				return err
			}
			if _, err := applyBalanceDeltaTx(ctx, tx, consumerID, e.Amount, now); err != nil {
				return err
			}
			entries = append(entries, e)
		}

		if req.PointsRedeemed > 0 {
			e := LedgerEntry{
				ID:            uuid.NewString(),
				ConsumerID:    consumerID,
				Amount:        -req.PointsRedeemed,
				EntryType:     EntryTypeRedeem,
				TransactionID: txn.ID,
				Description:   "points redeemed at point of sale",
				CreatedAt:     now,
			}
			if err := insertLedgerTx(ctx, tx, e); err != nil {
				return err
			}
			if _, err := applyBalanceDeltaTx(ctx, tx, consumerID, e.Amount, now); err != nil {
				return err
			}
			entries = append(entries, e)
		}

		return nil
	})
	if err != nil {
		return Transaction{}, nil, err
	}
	return txn, entries, nil
}

// GetBalance reads the projection; a consumer with no movements reads as zero.
func (s *Service) GetBalance(ctx context.Context, consumerID string) (int64, error) {
	if consumerID == "" {
		return 0, ErrInvalidArgument
	}
	b, err := getBalance(ctx, s.db, consumerID)
	if err != nil {
		return 0, err
	}
	return b.Points, nil
}

// ReconcileBalance replays the ledger and compares it with the projection.
// Any discrepancy is surfaced as ErrBalanceDrift alongside both readings.
func (s *Service) ReconcileBalance(ctx context.Context, consumerID string) (ledgerSum, projected int64, err error) {
	if consumerID == "" {
		return 0, 0, ErrInvalidArgument
	}
	ledgerSum, err = sumLedger(ctx, s.db, consumerID)
	if err != nil {
		return 0, 0, err
	}
	b, err := getBalance(ctx, s.db, consumerID)
	if err != nil {
		return 0, 0, err
	}
	projected = b.Points
	if ledgerSum != projected {
		return ledgerSum, projected, ErrBalanceDrift
	}
	return ledgerSum, projected, nil
}

// GetHistory returns the consumer's ledger entries, newest first.
func (s *Service) GetHistory(ctx context.Context, consumerID string) ([]LedgerEntry, error) {
	if consumerID == "" {
		return nil, ErrInvalidArgument
	}
	return listLedger(ctx, s.db, consumerID)
}

func (s *Service) ListConsumerTransactions(ctx context.Context, consumerID string) ([]Transaction, error) {
	if consumerID == "" {
		return nil, ErrInvalidArgument
	}
	return listTransactions(ctx, s.db, `WHERE consumer_id = $1 ORDER BY transaction_date DESC`, consumerID)
}

func (s *Service) ListMerchantTransactions(ctx context.Context, merchantID string) ([]Transaction, error) {
	if merchantID == "" {
		return nil, ErrInvalidArgument
	}
	return listTransactions(ctx, s.db, `WHERE merchant_id = $1 ORDER BY transaction_date DESC`, merchantID)
}

// AdminAdjust posts a manual BONUS or ADJUSTMENT movement. The amount is
// signed; negative adjustments may not take the balance below zero.
func (s *Service) AdminAdjust(ctx context.Context, consumerID string, amount int64, entryType EntryType, reason string) (LedgerEntry, Balance, error) {
	if consumerID == "" || amount == 0 || reason == "" {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}
	if entryType != EntryTypeBonus && entryType != EntryTypeAdjustment && entryType != EntryTypeExpire {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	entry := LedgerEntry{
		ID:          uuid.NewString(),
		ConsumerID:  consumerID,
		Amount:      amount,
		EntryType:   entryType,
		Description: reason,
		CreatedAt:   now,
	}

	var outBal Balance
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		bal, err := getBalanceForUpdateTx(ctx, tx, consumerID, now)
		if err != nil {
			return err
		}
		if amount < 0 && bal.Points+amount < 0 {
			return ErrInsufficientPoints
		}
		if err := insertLedgerTx(ctx, tx, entry); err != nil {
			return err
		}
		b, err := applyBalanceDeltaTx(ctx, tx, consumerID, amount, now)
		if err != nil {
			return err
		}
		outBal = b
		return nil
	})
	if err != nil {
		return LedgerEntry{}, Balance{}, err
	}
	return entry, outBal, nil
}

/* ===================== TX-SCOPED API ===================== */

// DebitForClaimTx posts the point debit for a coupon claim inside the
// caller's transaction, so the debit commits or rolls back with the coupon
// insert and the inventory decrement.
func DebitForClaimTx(ctx context.Context, tx *sql.Tx, consumerID, couponID, offerTitle string, amount int64, now time.Time) (LedgerEntry, error) {
	if consumerID == "" || couponID == "" || amount <= 0 {
		return LedgerEntry{}, ErrInvalidArgument
	}

	bal, err := getBalanceForUpdateTx(ctx, tx, consumerID, now)
	if err != nil {
		return LedgerEntry{}, err
	}
	if bal.Points < amount {
		return LedgerEntry{}, ErrInsufficientPoints
	}

	entry := LedgerEntry{
		ID:          uuid.NewString(),
		ConsumerID:  consumerID,
		Amount:      -amount,
		EntryType:   EntryTypeRedeem,
		CouponID:    couponID,
		Description: fmt.Sprintf("claimed offer %q", offerTitle),
		CreatedAt:   now,
	}
	if err := insertLedgerTx(ctx, tx, entry); err != nil {
		return LedgerEntry{}, err
	}
	if _, err := applyBalanceDeltaTx(ctx, tx, consumerID, entry.Amount, now); err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}
