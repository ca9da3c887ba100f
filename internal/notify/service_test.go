package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rabaislocal/internal/coupon"
)

type stubCoupons struct {
	view coupon.View
	err  error
}

func (s stubCoupons) GetConsumerCoupon(ctx context.Context, consumerID, couponID string) (coupon.View, error) {
	return s.view, s.err
}

type captureSender struct {
	to, subject, body string
	calls             int
}

func (c *captureSender) Send(ctx context.Context, to, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	c.calls++
	return nil
}

func sampleView() coupon.View {
	until := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	v := coupon.View{OfferTitle: "2 cafés pour 1", MerchantName: "Café Brume"}
	v.UniqueCode = "RABAIS-XH52"
	v.ValidUntil = &until
	return v
}

func TestSendCouponEmail_RendersCodeAndValidity(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(stubCoupons{view: sampleView()}, sender)

	if err := svc.SendCouponEmail(context.Background(), "u1", "c1", "u1@example.com"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected one send")
	}
	if !strings.Contains(sender.body, "RABAIS-XH52") {
		t.Fatalf("expected code in body:\n%s", sender.body)
	}
	if !strings.Contains(sender.body, "2026-04-01") {
		t.Fatalf("expected validity date in body:\n%s", sender.body)
	}
	if !strings.Contains(sender.subject, "RABAIS-XH52") {
		t.Fatalf("expected code in subject: %q", sender.subject)
	}
}

func TestSendCouponEmail_PropagatesOwnershipError(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(stubCoupons{err: coupon.ErrNotFound}, sender)

	if err := svc.SendCouponEmail(context.Background(), "u1", "c1", "u1@example.com"); !errors.Is(err, coupon.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if sender.calls != 0 {
		t.Fatalf("nothing must be sent when the read fails")
	}
}

func TestSendCouponEmail_RejectsInvalidArgs(t *testing.T) {
	svc := NewService(stubCoupons{}, &captureSender{})

	if err := svc.SendCouponEmail(context.Background(), "", "c1", "a@b.c"); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if err := svc.SendCouponEmail(context.Background(), "u1", "c1", ""); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSendRedeemedNotice(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(stubCoupons{view: sampleView()}, sender)

	if err := svc.SendRedeemedNotice(context.Background(), "u1", "c1", "u1@example.com"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(sender.body, "2 cafés pour 1") {
		t.Fatalf("expected offer title in body:\n%s", sender.body)
	}
}

func TestLogSender_NeverFails(t *testing.T) {
	s := &LogSender{}
	if err := s.Send(context.Background(), "a@b.c", "subject", "body"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
