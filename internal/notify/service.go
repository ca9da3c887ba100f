package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rabaislocal/internal/coupon"
)

// Sender delivers a rendered message to one recipient. Implementations wrap
// whatever transport the deployment uses (SMTP relay, provider API).
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes messages to the structured log instead of delivering
// them. It is the default in development and tests.
type LogSender struct {
	Log *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "email suppressed (log sender)",
		"to", to,
		"subject", subject,
		"bytes", len(body),
	)
	return nil
}

// CouponReader is the slice of the coupon service the notifier needs:
// an ownership-enforcing single-coupon read.
type CouponReader interface {
	GetConsumerCoupon(ctx context.Context, consumerID, couponID string) (coupon.View, error)
}

var ErrInvalidRequest = errors.New("notify: invalid request")

// Service sends coupon-related email on behalf of a consumer. Ownership is
// enforced by the coupon read: a consumer can never mail out another
// consumer's coupon.
type Service struct {
	coupons CouponReader
	sender  Sender
	clock   func() time.Time
}

func NewService(coupons CouponReader, sender Sender) *Service {
	return &Service{coupons: coupons, sender: sender, clock: time.Now}
}

// SendCouponEmail mails the coupon code to the given address.
func (s *Service) SendCouponEmail(ctx context.Context, consumerID, couponID, to string) error {
	if consumerID == "" || couponID == "" || to == "" {
		return ErrInvalidRequest
	}
	v, err := s.coupons.GetConsumerCoupon(ctx, consumerID, couponID)
	if err != nil {
		return err
	}
	subject, body, err := renderCoupon(v)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, to, subject, body)
}

// SendRedeemedNotice mails a confirmation after a coupon was used.
func (s *Service) SendRedeemedNotice(ctx context.Context, consumerID, couponID, to string) error {
	if consumerID == "" || couponID == "" || to == "" {
		return ErrInvalidRequest
	}
	v, err := s.coupons.GetConsumerCoupon(ctx, consumerID, couponID)
	if err != nil {
		return err
	}
	subject, body, err := renderRedeemed(v, s.clock().UTC())
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, to, subject, body)
}
