package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to end users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ActorUserID == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogRedemption records a merchant validating a coupon.
func (s *Service) LogRedemption(ctx context.Context, actorUserID, actorRole, ip, couponID, offerID, consumerID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeRedemption,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		CouponID:    couponID,
		OfferID:     offerID,
		ConsumerID:  consumerID,
		Message:     "coupon redeemed",
	})
}

// LogAdminAdjustment records a manual wallet adjustment performed by staff.
func (s *Service) LogAdminAdjustment(ctx context.Context, actorUserID, actorRole, ip, consumerID, message, metadata string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeAdminAdjustment,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		ConsumerID:  consumerID,
		Message:     message,
		Metadata:    metadata,
	})
}

// LogOfferChange records a merchant mutating its catalog (create, update,
// deactivate, delete, inventory changes).
func (s *Service) LogOfferChange(ctx context.Context, actorUserID, actorRole, ip, offerID, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeOfferChange,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		OfferID:     offerID,
		Message:     message,
	})
}
