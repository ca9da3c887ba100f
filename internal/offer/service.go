package offer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rabaislocal/pkg/utils"

	"github.com/google/uuid"
)

// Service owns the offer catalog and the inventory ledger.
//
// Inventory invariants:
// - remaining_units >= 0 always
// - decrement happens as one conditional UPDATE, never read-then-write
// - ReleaseUnit compensates a reservation whose coupon insert failed
type Service struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

var (
	ErrNotFound        = errors.New("offer not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("offer not owned by merchant")
	ErrOfferInactive   = errors.New("offer inactive")
	ErrOfferExpired    = errors.New("offer expired")
	ErrOfferNotStarted = errors.New("offer not started")
	ErrOutOfStock      = errors.New("out of stock")
)

type CreateOfferRequest struct {
	CategoryID    string       `json:"category_id,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Conditions    string       `json:"conditions,omitempty"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value,omitempty"`
	StartDate     *time.Time   `json:"start_date,omitempty"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	ImageURL      string       `json:"image_url,omitempty"`
	CreditCost    int64        `json:"credit_cost"`
	IsActive      *bool        `json:"is_active,omitempty"`
}

func (r CreateOfferRequest) validate() error {
	if r.Title == "" {
		return ErrInvalidArgument
	}
	if !r.DiscountType.Valid() {
		return ErrInvalidArgument
	}
	if r.DiscountType.RequiresValue() && r.DiscountValue <= 0 {
		return ErrInvalidArgument
	}
	if r.DiscountType == DiscountTypePercentage && r.DiscountValue > 100 {
		return ErrInvalidArgument
	}
	if r.CreditCost < 0 {
		return ErrInvalidArgument
	}
	if r.StartDate != nil && r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		return ErrInvalidArgument
	}
	return nil
}

func (s *Service) CreateOffer(ctx context.Context, merchantID string, req CreateOfferRequest) (Offer, error) {
	if merchantID == "" {
		return Offer{}, ErrInvalidArgument
	}
	if err := req.validate(); err != nil {
		return Offer{}, err
	}

	now := s.clock().UTC()
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	o := Offer{
		ID:            uuid.NewString(),
		MerchantID:    merchantID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Description:   req.Description,
		Conditions:    req.Conditions,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ImageURL:      req.ImageURL,
		CreditCost:    req.CreditCost,
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := insertOffer(ctx, s.db, o); err != nil {
		return Offer{}, err
	}
	return o, nil
}

func (s *Service) UpdateOffer(ctx context.Context, merchantID, offerID string, req CreateOfferRequest) (Offer, error) {
	if merchantID == "" || offerID == "" {
		return Offer{}, ErrInvalidArgument
	}
	if err := req.validate(); err != nil {
		return Offer{}, err
	}

	existing, err := getOffer(ctx, s.db, offerID)
	if err != nil {
		return Offer{}, err
	}
	if existing.MerchantID != merchantID {
		return Offer{}, ErrUnauthorized
	}

	now := s.clock().UTC()
	o := existing
	o.CategoryID = req.CategoryID
	o.Title = req.Title
	o.Description = req.Description
	o.Conditions = req.Conditions
	o.DiscountType = req.DiscountType
	o.DiscountValue = req.DiscountValue
	o.StartDate = req.StartDate
	o.EndDate = req.EndDate
	o.ImageURL = req.ImageURL
	o.CreditCost = req.CreditCost
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	o.UpdatedAt = now

	if err := updateOffer(ctx, s.db, o); err != nil {
		return Offer{}, err
	}
	return o, nil
}

func (s *Service) DeactivateOffer(ctx context.Context, merchantID, offerID string) error {
	if merchantID == "" || offerID == "" {
		return ErrInvalidArgument
	}
	return setOfferActive(ctx, s.db, merchantID, offerID, false, s.clock().UTC())
}

func (s *Service) DeleteOffer(ctx context.Context, merchantID, offerID string) error {
	if merchantID == "" || offerID == "" {
		return ErrInvalidArgument
	}
	return deleteOffer(ctx, s.db, merchantID, offerID)
}

func (s *Service) GetOffer(ctx context.Context, offerID string) (Offer, error) {
	if offerID == "" {
		return Offer{}, ErrInvalidArgument
	}
	return getOffer(ctx, s.db, offerID)
}

func (s *Service) ListMerchantOffers(ctx context.Context, merchantID string) ([]Offer, error) {
	if merchantID == "" {
		return nil, ErrInvalidArgument
	}
	return listOffers(ctx, s.db, `WHERE merchant_id = $1 ORDER BY created_at DESC`, merchantID)
}

// ListActiveOffers serves the public catalog.
func (s *Service) ListActiveOffers(ctx context.Context) ([]Offer, error) {
	return listOffers(ctx, s.db, `WHERE is_active = TRUE ORDER BY created_at DESC`)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return listCategories(ctx, s.db)
}

/* ===================== INVENTORY ===================== */

// SetInventory caps the offer's redemption units. Resetting also restores
// remaining_units; merchants use this to restock.
func (s *Service) SetInventory(ctx context.Context, merchantID, offerID string, units int64) error {
	if merchantID == "" || offerID == "" || units < 0 {
		return ErrInvalidArgument
	}
	existing, err := getOffer(ctx, s.db, offerID)
	if err != nil {
		return err
	}
	if existing.MerchantID != merchantID {
		return ErrUnauthorized
	}
	return upsertInventory(ctx, s.db, offerID, units, s.clock().UTC())
}

func (s *Service) GetInventory(ctx context.Context, offerID string) (Inventory, bool, error) {
	if offerID == "" {
		return Inventory{}, false, ErrInvalidArgument
	}
	return getInventory(ctx, s.db, offerID)
}

// ReserveUnit reserves one redemption unit in its own transaction.
// Callers that already hold a transaction should use ReserveUnitTx with
// GetForUpdateTx + CheckClaimable instead, so the reservation and the coupon
// insert commit or roll back together.
func (s *Service) ReserveUnit(ctx context.Context, offerID string) error {
	if offerID == "" {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()
	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		o, err := GetForUpdateTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if err := CheckClaimable(o, now); err != nil {
			return err
		}
		return ReserveUnitTx(ctx, tx, offerID, now)
	})
}

// ReleaseUnit is the compensating action for a standalone reservation.
func (s *Service) ReleaseUnit(ctx context.Context, offerID string) error {
	if offerID == "" {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()
	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		return ReleaseUnitTx(ctx, tx, offerID, now)
	})
}

// CheckClaimable validates the offer's flags and validity window against now.
// Pure function; shared by the standalone reservation path and the coupon engine.
func CheckClaimable(o Offer, now time.Time) error {
	if !o.IsActive {
		return ErrOfferInactive
	}
	if o.StartDate != nil && now.Before(*o.StartDate) {
		return ErrOfferNotStarted
	}
	if o.EndDate != nil && now.After(*o.EndDate) {
		return ErrOfferExpired
	}
	return nil
}
