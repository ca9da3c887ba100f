package offer

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockTx(t *testing.T) (*sql.Tx, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx, mock
}

func TestReserveUnitTx_DecrementWinner(t *testing.T) {
	tx, mock := newMockTx(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE offer_inventory").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ReserveUnitTx(context.Background(), tx, "o1", now); err != nil {
		t.Fatalf("expected reservation to win, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveUnitTx_TrackedButEmpty(t *testing.T) {
	tx, mock := newMockTx(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// The conditional decrement touches no row, and the inventory row exists:
	// the last unit is gone.
	mock.ExpectExec("UPDATE offer_inventory").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := ReserveUnitTx(context.Background(), tx, "o1", now); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveUnitTx_UntrackedIsUnlimited(t *testing.T) {
	tx, mock := newMockTx(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE offer_inventory").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	if err := ReserveUnitTx(context.Background(), tx, "o1", now); err != nil {
		t.Fatalf("expected untracked offer to reserve freely, got %v", err)
	}
}

func TestNullUUID(t *testing.T) {
	if got := nullUUID(""); got != nil {
		t.Fatalf("expected nil for empty id, got %v", got)
	}
	if got := nullUUID("b0d3"); got != "b0d3" {
		t.Fatalf("expected value to pass through, got %v", got)
	}
}
