package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresActorAndType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeRedemption}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{ActorUserID: "u"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogRedemption(context.Background(), "m1", "merchant", "1.2.3.4", "c1", "o1", "u1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].Type != EventTypeRedemption {
		t.Fatalf("expected coupon_redemption")
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be filled in")
	}
}

func TestService_LogAdminAdjustment(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogAdminAdjustment(context.Background(), "a1", "admin", "", "u1", "bonus grant", `{"points":500}`); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	evs := repo.Events()
	if len(evs) != 1 || evs[0].Type != EventTypeAdminAdjustment {
		t.Fatalf("expected one wallet_admin_adjustment event")
	}
	if evs[0].ConsumerID != "u1" {
		t.Fatalf("expected target consumer captured")
	}
}
