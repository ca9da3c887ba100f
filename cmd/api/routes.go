package main

import (
	"database/sql"
	"time"

	"rabaislocal/internal/config"
	"rabaislocal/internal/httpapi"
	"rabaislocal/internal/ratelimit"
	"rabaislocal/internal/rbac"
	"rabaislocal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, limiter *ratelimit.Limiter, cfg config.Config, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Browsing the catalog requires no account.
	r.GET("/v1/offers", h.ListActiveOffers)
	r.GET("/v1/offers/:offer_id", h.GetOffer)
	r.GET("/v1/offers/:offer_id/inventory", h.GetInventory)
	r.GET("/v1/categories", h.ListCategories)

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireIdentity())
	{
		// CONSUMER routes
		consumer := v1.Group("")
		consumer.Use(rbac.RequireAnyRole(rbac.RoleConsumer))
		{
			consumer.POST("/offers/:offer_id/claim",
				ratelimit.PerUser(limiter, "claim_offer", cfg.Coupon.ClaimRateLimit, cfg.Coupon.ClaimRateWindow),
				h.ClaimOffer)
			consumer.GET("/coupons", h.GetMyCoupons)
			consumer.POST("/coupons/:coupon_id/email",
				ratelimit.PerUser(limiter, "coupon_email", cfg.Coupon.EmailRateLimit, cfg.Coupon.EmailRateWindow),
				h.SendCouponEmail)

			consumer.GET("/wallet/balance", h.GetBalance)
			consumer.GET("/wallet/history", h.GetHistory)
			consumer.GET("/wallet/transactions", h.ListMyTransactions)
			consumer.GET("/wallet/summary", h.MyPointsSummary)
		}

		// MERCHANT routes
		merchant := v1.Group("/merchant")
		merchant.Use(rbac.RequireAnyRole(rbac.RoleMerchant))
		{
			merchant.POST("/coupons/redeem",
				ratelimit.PerUser(limiter, "redeem_coupon", cfg.Coupon.RedeemRateLimit, cfg.Coupon.RedeemRateWindow),
				h.RedeemCoupon)

			merchant.POST("/offers", h.CreateOffer)
			merchant.GET("/offers", h.ListMerchantOffers)
			merchant.PUT("/offers/:offer_id", h.UpdateOffer)
			merchant.POST("/offers/:offer_id/deactivate", h.DeactivateOffer)
			merchant.DELETE("/offers/:offer_id", h.DeleteOffer)
			merchant.PUT("/offers/:offer_id/inventory", h.SetInventory)

			merchant.POST("/transactions", h.RecordTransaction)
			merchant.GET("/transactions", h.ListMerchantTransactions)
			merchant.GET("/reports/coupons", h.MerchantCouponsSummary)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.POST("/wallets/adjust", h.AdminAdjust)
			admin.GET("/wallets/:consumer_id/reconcile", h.ReconcileBalance)
		}
	}
}
