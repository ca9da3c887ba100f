package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	svc := NewService(db)
	svc.clock = func() time.Time { return testNow }
	return svc, mock
}

func balanceRows(consumerID string, points int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"consumer_id", "points", "updated_at"}).
		AddRow(consumerID, points, testNow)
}

func TestRecordTransaction_EarnWritesLedgerCounterpart(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_balances").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(balanceRows("c1", 0))
	mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_ledger").
		WithArgs(sqlmock.AnyArg(), "c1", int64(100), "EARN",
			sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("RETURNING consumer_id").WillReturnRows(balanceRows("c1", 100))
	mock.ExpectCommit()

	txn, entries, err := svc.RecordTransaction(context.Background(), "m1", "c1", RecordTransactionRequest{
		BillAmountCents: 1000,
		PointsEarned:    100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Type != TransactionTypeEarn || txn.Status != TransactionStatusCompleted {
		t.Fatalf("expected completed EARN transaction, got %+v", txn)
	}
	if len(entries) != 1 || entries[0].Amount != 100 || entries[0].EntryType != EntryTypeEarn {
		t.Fatalf("expected one +100 EARN ledger entry, got %+v", entries)
	}
	if entries[0].TransactionID != txn.ID {
		t.Fatalf("ledger entry must reference its transaction")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordTransaction_InsufficientPointsWritesNothing(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_balances").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(balanceRows("c1", 10))
	mock.ExpectRollback()

	_, _, err := svc.RecordTransaction(context.Background(), "m1", "c1", RecordTransactionRequest{
		BillAmountCents: 1000,
		PointsRedeemed:  50,
	})
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	// Neither the transaction nor any ledger entry was scripted; a write
	// would have failed the mock.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileBalance_MatchesLedgerSum(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("FROM wallet_ledger").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(int64(100)))
	mock.ExpectQuery("FROM wallet_balances").WillReturnRows(balanceRows("c1", 100))

	ledgerSum, projected, err := svc.ReconcileBalance(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledgerSum != 100 || projected != 100 {
		t.Fatalf("expected 100/100, got %d/%d", ledgerSum, projected)
	}
}

func TestReconcileBalance_SurfacesDrift(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery("FROM wallet_ledger").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(int64(100)))
	mock.ExpectQuery("FROM wallet_balances").WillReturnRows(balanceRows("c1", 90))

	ledgerSum, projected, err := svc.ReconcileBalance(context.Background(), "c1")
	if !errors.Is(err, ErrBalanceDrift) {
		t.Fatalf("expected ErrBalanceDrift, got %v", err)
	}
	if ledgerSum != 100 || projected != 90 {
		t.Fatalf("drift report must carry both readings, got %d/%d", ledgerSum, projected)
	}
}

func TestNullUUID(t *testing.T) {
	if got := nullUUID(""); got != nil {
		t.Fatalf("expected nil for empty id, got %v", got)
	}
	if got := nullUUID("7f3a"); got != "7f3a" {
		t.Fatalf("expected value to pass through, got %v", got)
	}
}
