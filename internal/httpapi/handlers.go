package httpapi

import (
	"errors"
	"net/http"
	"time"

	"rabaislocal/internal/audit"
	"rabaislocal/internal/auth"
	"rabaislocal/internal/coupon"
	"rabaislocal/internal/notify"
	"rabaislocal/internal/offer"
	"rabaislocal/internal/points"
	"rabaislocal/internal/reporting"
	"rabaislocal/internal/wallet"
	"rabaislocal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth    *auth.Manager
	Offers  *offer.Service
	Coupons *coupon.Service
	Wallet  *wallet.Service
	Points  *points.Service
	Reports *reporting.Service
	Notify  *notify.Service
	Audit   *audit.Service
}

// statusForReason maps wire-contract failure reasons onto HTTP statuses.
func statusForReason(reason string) int {
	switch reason {
	case coupon.ReasonNotFound:
		return http.StatusNotFound
	case coupon.ReasonUnauthorized:
		return http.StatusForbidden
	case coupon.ReasonAlreadyClaimed, coupon.ReasonAlreadyRedeemed, coupon.ReasonOutOfStock:
		return http.StatusConflict
	case coupon.ReasonExpired, coupon.ReasonOfferExpired:
		return http.StatusGone
	case coupon.ReasonOfferInactive, coupon.ReasonOfferNotStarted, coupon.ReasonInsufficientPoints:
		return http.StatusUnprocessableEntity
	case coupon.ReasonUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// abortDomainErr translates service sentinels into HTTP responses.
func abortDomainErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, offer.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, wallet.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, offer.ErrUnauthorized),
		errors.Is(err, coupon.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, offer.ErrInvalidArgument),
		errors.Is(err, coupon.ErrInvalidArgument),
		errors.Is(err, wallet.ErrInvalidArgument),
		errors.Is(err, reporting.ErrInvalidRequest),
		errors.Is(err, notify.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wallet.ErrInsufficientPoints):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient points"})
	default:
		logger.FromGin(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func identity(c *gin.Context) (userID, role string, ok bool) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return "", "", false
	}
	role, _ = auth.Role(c.Request.Context())
	return userID, role, true
}

/* ===================== AUTH ===================== */

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

/* ===================== OFFERS (public reads) ===================== */

func (h Handlers) ListActiveOffers(c *gin.Context) {
	offers, err := h.Offers.ListActiveOffers(c.Request.Context())
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h Handlers) GetOffer(c *gin.Context) {
	o, err := h.Offers.GetOffer(c.Request.Context(), c.Param("offer_id"))
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h Handlers) ListCategories(c *gin.Context) {
	cats, err := h.Offers.ListCategories(c.Request.Context())
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

/* ===================== OFFERS (merchant) ===================== */

func (h Handlers) CreateOffer(c *gin.Context) {
	merchantID, role, ok := identity(c)
	if !ok {
		return
	}
	var req offer.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := h.Offers.CreateOffer(c.Request.Context(), merchantID, req)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	h.auditOfferChange(c, merchantID, role, o.ID, "offer created")
	c.JSON(http.StatusCreated, o)
}

func (h Handlers) UpdateOffer(c *gin.Context) {
	merchantID, role, ok := identity(c)
	if !ok {
		return
	}
	var req offer.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := h.Offers.UpdateOffer(c.Request.Context(), merchantID, c.Param("offer_id"), req)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	h.auditOfferChange(c, merchantID, role, o.ID, "offer updated")
	c.JSON(http.StatusOK, o)
}

func (h Handlers) DeactivateOffer(c *gin.Context) {
	merchantID, role, ok := identity(c)
	if !ok {
		return
	}
	offerID := c.Param("offer_id")
	if err := h.Offers.DeactivateOffer(c.Request.Context(), merchantID, offerID); err != nil {
		abortDomainErr(c, err)
		return
	}
	h.auditOfferChange(c, merchantID, role, offerID, "offer deactivated")
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (h Handlers) DeleteOffer(c *gin.Context) {
	merchantID, role, ok := identity(c)
	if !ok {
		return
	}
	offerID := c.Param("offer_id")
	if err := h.Offers.DeleteOffer(c.Request.Context(), merchantID, offerID); err != nil {
		abortDomainErr(c, err)
		return
	}
	h.auditOfferChange(c, merchantID, role, offerID, "offer deleted")
	c.Status(http.StatusNoContent)
}

func (h Handlers) ListMerchantOffers(c *gin.Context) {
	merchantID, _, ok := identity(c)
	if !ok {
		return
	}
	offers, err := h.Offers.ListMerchantOffers(c.Request.Context(), merchantID)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

type setInventoryRequest struct {
	Units int64 `json:"units"`
}

func (h Handlers) SetInventory(c *gin.Context) {
	merchantID, role, ok := identity(c)
	if !ok {
		return
	}
	var req setInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	offerID := c.Param("offer_id")
	if err := h.Offers.SetInventory(c.Request.Context(), merchantID, offerID, req.Units); err != nil {
		abortDomainErr(c, err)
		return
	}
	h.auditOfferChange(c, merchantID, role, offerID, "inventory set")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h Handlers) GetInventory(c *gin.Context) {
	inv, tracked, err := h.Offers.GetInventory(c.Request.Context(), c.Param("offer_id"))
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	if !tracked {
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true, "inventory": inv})
}

/* ===================== COUPONS ===================== */

func (h Handlers) ClaimOffer(c *gin.Context) {
	consumerID, _, ok := identity(c)
	if !ok {
		return
	}
	res, err := h.Coupons.ClaimOffer(c.Request.Context(), consumerID, c.Param("offer_id"))
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidArgument) {
			abortDomainErr(c, err)
			return
		}
		logger.FromGin(c).Error("claim failed", "err", err)
	}
	if !res.Success {
		c.JSON(statusForReason(res.Reason), res)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (h Handlers) RedeemCoupon(c *gin.Context) {
	merchantID, role, ok := identity(c)
	if !ok {
		return
	}
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	res, err := h.Coupons.RedeemCoupon(c.Request.Context(), req.Code, merchantID)
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidArgument) {
			abortDomainErr(c, err)
			return
		}
		logger.FromGin(c).Error("redeem failed", "err", err)
	}
	if !res.Success {
		c.JSON(statusForReason(res.Reason), res)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.LogRedemption(c.Request.Context(), merchantID, role, c.ClientIP(), res.CouponID, res.OfferID, res.ConsumerID); err != nil {
			logger.FromGin(c).Warn("audit append failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) GetMyCoupons(c *gin.Context) {
	consumerID, _, ok := identity(c)
	if !ok {
		return
	}
	views, err := h.Coupons.GetMyCoupons(c.Request.Context(), consumerID)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": views})
}

type sendCouponEmailRequest struct {
	Email string `json:"email"`
}

func (h Handlers) SendCouponEmail(c *gin.Context) {
	consumerID, _, ok := identity(c)
	if !ok {
		return
	}
	var req sendCouponEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Notify.SendCouponEmail(c.Request.Context(), consumerID, c.Param("coupon_id"), req.Email); err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

/* ===================== WALLET ===================== */

func (h Handlers) GetBalance(c *gin.Context) {
	consumerID, _, ok := identity(c)
	if !ok {
		return
	}
	pts, err := h.Wallet.GetBalance(c.Request.Context(), consumerID)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consumer_id": consumerID, "points": pts})
}

func (h Handlers) GetHistory(c *gin.Context) {
	consumerID, _, ok := identity(c)
	if !ok {
		return
	}
	entries, err := h.Wallet.GetHistory(c.Request.Context(), consumerID)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type recordTransactionRequest struct {
	ConsumerID string `json:"consumer_id"`
	CategoryID string `json:"category_id,omitempty"`

	wallet.RecordTransactionRequest
}

// RecordTransaction books a point-of-sale event. When the terminal omits
// points_earned, the earn calculator fills it from the bill amount.
func (h Handlers) RecordTransaction(c *gin.Context) {
	merchantID, _, ok := identity(c)
	if !ok {
		return
	}
	var req recordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.ConsumerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "consumer_id required"})
		return
	}

	if req.PointsEarned == 0 && req.PointsRedeemed == 0 && req.BillAmountCents > 0 && h.Points != nil {
		earn, err := h.Points.CalculateEarn(c.Request.Context(), points.EarnRequest{
			MerchantID:      merchantID,
			CategoryID:      req.CategoryID,
			BillAmountCents: req.BillAmountCents,
		})
		if err == nil {
			req.PointsEarned = earn.Points
		}
	}

	txn, entries, err := h.Wallet.RecordTransaction(c.Request.Context(), merchantID, req.ConsumerID, req.RecordTransactionRequest)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": txn, "entries": entries})
}

func (h Handlers) ListMerchantTransactions(c *gin.Context) {
	merchantID, _, ok := identity(c)
	if !ok {
		return
	}
	txns, err := h.Wallet.ListMerchantTransactions(c.Request.Context(), merchantID)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (h Handlers) ListMyTransactions(c *gin.Context) {
	consumerID, _, ok := identity(c)
	if !ok {
		return
	}
	txns, err := h.Wallet.ListConsumerTransactions(c.Request.Context(), consumerID)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

/* ===================== ADMIN ===================== */

type adminAdjustRequest struct {
	ConsumerID string `json:"consumer_id"`
	Amount     int64  `json:"amount"`
	EntryType  string `json:"entry_type"`
	Reason     string `json:"reason"`
}

func (h Handlers) AdminAdjust(c *gin.Context) {
	adminID, adminRole, ok := identity(c)
	if !ok {
		return
	}
	var req adminAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	entry, bal, err := h.Wallet.AdminAdjust(c.Request.Context(), req.ConsumerID, req.Amount, wallet.EntryType(req.EntryType), req.Reason)
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	if h.Audit != nil {
		if err := h.Audit.LogAdminAdjustment(c.Request.Context(), adminID, adminRole, c.ClientIP(), req.ConsumerID, req.Reason, ""); err != nil {
			logger.FromGin(c).Warn("audit append failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "balance": bal})
}

func (h Handlers) ReconcileBalance(c *gin.Context) {
	consumerID := c.Param("consumer_id")
	ledgerSum, projected, err := h.Wallet.ReconcileBalance(c.Request.Context(), consumerID)
	if err != nil {
		if errors.Is(err, wallet.ErrBalanceDrift) {
			c.JSON(http.StatusConflict, gin.H{
				"consumer_id": consumerID,
				"ledger_sum":  ledgerSum,
				"projected":   projected,
				"consistent":  false,
			})
			return
		}
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"consumer_id": consumerID,
		"ledger_sum":  ledgerSum,
		"projected":   projected,
		"consistent":  true,
	})
}

/* ===================== REPORTING ===================== */

func (h Handlers) MerchantCouponsSummary(c *gin.Context) {
	merchantID, _, ok := identity(c)
	if !ok {
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Reports.CouponsSummary(c.Request.Context(), reporting.CouponsSummaryRequest{
		MerchantID: merchantID,
		Range:      rng,
		OfferID:    c.Query("offer_id"),
	})
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) MyPointsSummary(c *gin.Context) {
	consumerID, _, ok := identity(c)
	if !ok {
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Reports.PointsSummary(c.Request.Context(), reporting.PointsSummaryRequest{
		ConsumerID: consumerID,
		Range:      rng,
	})
	if err != nil {
		abortDomainErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseRange(c *gin.Context) (reporting.TimeRange, error) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("to must be RFC3339")
	}
	return reporting.TimeRange{From: from, To: to}, nil
}

func (h Handlers) auditOfferChange(c *gin.Context, actorID, role, offerID, msg string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.LogOfferChange(c.Request.Context(), actorID, role, c.ClientIP(), offerID, msg); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}
