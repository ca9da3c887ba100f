package coupon

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rabaislocal/internal/config"
	"rabaislocal/internal/offer"
	"rabaislocal/internal/wallet"
	"rabaislocal/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Service owns the coupon lifecycle: issuance at claim time and the
// ACTIVE -> USED transition at redemption.
//
// Atomicity contract:
// - A claim's inventory decrement, coupon insert and point debit commit or
//   roll back as one transaction.
// - Redemption's status transition is a single conditional UPDATE; exactly
//   one concurrent caller wins, the rest get ALREADY_REDEEMED.
type Service struct {
	db  *sql.DB
	cfg config.CouponConfig
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB, cfg config.CouponConfig) *Service {
	if cfg.CodePrefix == "" {
		cfg.CodePrefix = "RABAIS"
	}
	if cfg.CodeRetries <= 0 {
		cfg.CodeRetries = 5
	}
	if cfg.DefaultValidity <= 0 {
		cfg.DefaultValidity = 30 * 24 * time.Hour
	}
	return &Service{db: db, cfg: cfg, clock: time.Now}
}

var (
	ErrNotFound        = errors.New("coupon not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("coupon offer not owned by merchant")
	ErrAlreadyClaimed  = errors.New("offer already claimed by consumer")
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")
	ErrCouponExpired   = errors.New("coupon expired")
	ErrCodeCollision   = errors.New("coupon code generation exhausted retries")
)

// Constraint names from the coupons schema. The pre-insert checks are
// advisory; these constraints decide races, and violations map back to
// domain outcomes instead of surfacing as UNKNOWN_ERROR.
const (
	constraintOfferConsumer = "uq_coupons_offer_consumer"
	constraintUniqueCode    = "uq_coupons_code"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

/* ===================== CLAIM ===================== */

// ClaimOffer converts one unit of offer inventory into an ACTIVE coupon.
// Domain failures come back as a tagged result; the returned error is
// non-nil only for backing-store trouble (surfaced to the caller as
// UNKNOWN_ERROR). Only a lost unique_code race is retried.
func (s *Service) ClaimOffer(ctx context.Context, consumerID, offerID string) (ClaimResult, error) {
	if consumerID == "" || offerID == "" {
		return ClaimResult{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	var out ClaimResult
	var err error

	// A concurrent claim can win the unique_code constraint between our
	// collision check and the insert; that aborts the whole transaction, so
	// the retry reruns it from the top with a fresh code.
	for attempt := 0; attempt < s.cfg.CodeRetries; attempt++ {
		err = s.claimOnce(ctx, consumerID, offerID, now, &out)
		if err == nil || !isUniqueViolation(err, constraintUniqueCode) {
			break
		}
	}
	if err != nil {
		if reason, ok := claimReason(err); ok {
			return ClaimResult{Success: false, Reason: reason}, nil
		}
		return ClaimResult{Success: false, Reason: ReasonUnknown}, err
	}
	return out, nil
}

func (s *Service) claimOnce(ctx context.Context, consumerID, offerID string, now time.Time, out *ClaimResult) error {
	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		o, err := offer.GetTx(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if err := offer.CheckClaimable(o, now); err != nil {
			return err
		}

		// Policy check runs before the reservation so a duplicate claim never
		// burns a unit. The (offer_id, consumer_id) uniqueness constraint
		// backs it under concurrency.
		if s.cfg.OnePerConsumer {
			claimed, err := consumerHasCouponTx(ctx, tx, offerID, consumerID)
			if err != nil {
				return err
			}
			if claimed {
				return ErrAlreadyClaimed
			}
		}

		if err := offer.ReserveUnitTx(ctx, tx, offerID, now); err != nil {
			return err
		}

		code, err := s.uniqueCodeTx(ctx, tx)
		if err != nil {
			return err
		}

		validUntil := now.Add(s.cfg.DefaultValidity)
		if o.EndDate != nil {
			validUntil = *o.EndDate
		}

		c := Coupon{
			ID:           uuid.NewString(),
			OfferID:      offerID,
			ConsumerID:   consumerID,
			UniqueCode:   code,
			Status:       StatusActive,
			PurchaseDate: now,
			ValidUntil:   &validUntil,
		}
		if err := insertCouponTx(ctx, tx, c); err != nil {
			return err
		}

		// Claims priced in points debit the wallet in the same transaction.
		if o.CreditCost > 0 {
			if _, err := wallet.DebitForClaimTx(ctx, tx, consumerID, c.ID, o.Title, o.CreditCost, now); err != nil {
				return err
			}
		}

		*out = ClaimResult{Success: true, CouponID: c.ID, Code: c.UniqueCode}
		return nil
	})
}

// uniqueCodeTx generates a code and collision-checks it against existing
// coupons, retrying up to the configured bound.
func (s *Service) uniqueCodeTx(ctx context.Context, tx *sql.Tx) (string, error) {
	for i := 0; i < s.cfg.CodeRetries; i++ {
		code, err := newCode(s.cfg.CodePrefix)
		if err != nil {
			return "", err
		}
		exists, err := codeExistsTx(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeCollision
}

func claimReason(err error) (string, bool) {
	switch {
	case errors.Is(err, offer.ErrNotFound):
		return ReasonNotFound, true
	case errors.Is(err, offer.ErrOfferInactive):
		return ReasonOfferInactive, true
	case errors.Is(err, offer.ErrOfferExpired):
		return ReasonOfferExpired, true
	case errors.Is(err, offer.ErrOfferNotStarted):
		return ReasonOfferNotStarted, true
	case errors.Is(err, offer.ErrOutOfStock):
		return ReasonOutOfStock, true
	case errors.Is(err, ErrAlreadyClaimed):
		return ReasonAlreadyClaimed, true
	case isUniqueViolation(err, constraintOfferConsumer):
		// Lost the duplicate-claim race after the advisory pre-check passed.
		return ReasonAlreadyClaimed, true
	case errors.Is(err, wallet.ErrInsufficientPoints):
		return ReasonInsufficientPoints, true
	default:
		return "", false
	}
}

/* ===================== REDEEM ===================== */

// RedeemCoupon marks a coupon USED on behalf of the merchant owning its
// offer. Expiry is re-checked here even when the stored status is still
// ACTIVE; an expired coupon is rejected without any write.
func (s *Service) RedeemCoupon(ctx context.Context, codeOrID, merchantID string) (RedeemResult, error) {
	if codeOrID == "" || merchantID == "" {
		return RedeemResult{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	var out RedeemResult

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		cw, err := findByCodeOrIDTx(ctx, tx, codeOrID)
		if err != nil {
			return err
		}

		// A merchant may only validate coupons for its own offers.
		if cw.OfferMerchantID != merchantID {
			return ErrUnauthorized
		}

		switch cw.EffectiveStatus(now) {
		case StatusUsed:
			return ErrAlreadyRedeemed
		case StatusExpired:
			return ErrCouponExpired
		}

		won, err := markUsedTx(ctx, tx, cw.ID, merchantID, now)
		if err != nil {
			return err
		}
		if !won {
			// Lost the race: another terminal flipped the status first.
			return ErrAlreadyRedeemed
		}

		out = RedeemResult{
			Success:       true,
			CouponID:      cw.ID,
			OfferID:       cw.OfferID,
			ConsumerID:    cw.ConsumerID,
			OfferTitle:    cw.OfferTitle,
			DiscountType:  cw.DiscountType,
			DiscountValue: cw.DiscountValue,
		}
		return nil
	})
	if err != nil {
		if reason, ok := redeemReason(err); ok {
			return RedeemResult{Success: false, Reason: reason}, nil
		}
		return RedeemResult{Success: false, Reason: ReasonUnknown}, err
	}
	return out, nil
}

func redeemReason(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound, true
	case errors.Is(err, ErrUnauthorized):
		return ReasonUnauthorized, true
	case errors.Is(err, ErrAlreadyRedeemed):
		return ReasonAlreadyRedeemed, true
	case errors.Is(err, ErrCouponExpired):
		return ReasonExpired, true
	default:
		return "", false
	}
}

/* ===================== READS ===================== */

// GetMyCoupons lists the consumer's coupons with joined offer fields.
// EXPIRED is derived in the view; the stored status is left untouched.
func (s *Service) GetMyCoupons(ctx context.Context, consumerID string) ([]View, error) {
	if consumerID == "" {
		return nil, ErrInvalidArgument
	}
	rows, err := listConsumerCoupons(ctx, s.db, consumerID)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	out := make([]View, 0, len(rows))
	for _, r := range rows {
		out = append(out, viewOf(r, now))
	}
	return out, nil
}

// GetConsumerCoupon fetches one coupon, enforcing ownership. Used by the
// email path so a consumer can never mail out another consumer's coupon.
func (s *Service) GetConsumerCoupon(ctx context.Context, consumerID, couponID string) (View, error) {
	if consumerID == "" || couponID == "" {
		return View{}, ErrInvalidArgument
	}
	r, err := getConsumerCoupon(ctx, s.db, consumerID, couponID)
	if err != nil {
		return View{}, err
	}
	return viewOf(r, s.clock().UTC()), nil
}

func viewOf(r couponWithOffer, now time.Time) View {
	v := View{
		Coupon:        r.Coupon,
		OfferTitle:    r.OfferTitle,
		DiscountType:  r.DiscountType,
		DiscountValue: r.DiscountValue,
		MerchantName:  r.MerchantName,
	}
	v.Status = r.EffectiveStatus(now)
	return v
}
