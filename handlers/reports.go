package handlers

import (
	"time"

	"github.com/alexisbanda/invercorp-backend/ledger"
	"github.com/go-redis/cache/v8"
	"github.com/gofiber/fiber/v2"
)

const dashboardCacheKey = "reports:dashboard"

// @Summary Admin dashboard aggregates.
// @Description portfolio totals, aging buckets, advisor effectiveness and savings totals; cached for five minutes.
// @Tags reports
// @Produce json
// @Success 200 {object} ledger.Dashboard
// @Router /api/core/reports/dashboard [get]
func GetDashboard(h *Handler, rcache *cache.Cache) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		if rcache != nil {
			var dash ledger.Dashboard
			if err := rcache.Get(ctx, dashboardCacheKey, &dash); err == nil {
				return FiberJsonResponse(c, fiber.StatusOK, "success", "dashboard (cached)", dash)
			} else if err != cache.ErrCacheMiss {
				h.L.Warnf("dashboard cache read failed: %v", err)
			}
		}

		loans, err := h.LoanDB.ListLoans(ctx)
		if err != nil {
			return FiberErrorResponse(c, "failed listing loans", err)
		}
		plans, err := h.SavingsDB.ListPlans(ctx)
		if err != nil {
			return FiberErrorResponse(c, "failed listing plans", err)
		}
		dash := ledger.BuildDashboard(loans, plans, time.Now())

		if rcache != nil {
			if err := rcache.Set(&cache.Item{
				Ctx:   ctx,
				Key:   dashboardCacheKey,
				Value: &dash,
				TTL:   5 * time.Minute,
			}); err != nil {
				h.L.Warnf("dashboard cache write failed: %v", err)
			}
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "dashboard", dash)
	}
}

// @Summary Aging buckets.
// @Description overdue amounts bucketed 1-30/31-60/61-90/>90 days past due.
// @Tags reports
// @Produce json
// @Success 200 {object} ledger.AgingBuckets
// @Router /api/core/reports/aging [get]
func GetAgingReport(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loans, err := h.LoanDB.ListLoans(c.Context())
		if err != nil {
			return FiberErrorResponse(c, "failed listing loans", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "aging buckets", ledger.ComputeAgingBuckets(loans, time.Now()))
	}
}

// @Summary Advisor effectiveness.
// @Description finalized / (active + finalized) * 100 per advisor.
// @Tags reports
// @Produce json
// @Success 200 {object} []ledger.AdvisorStats
// @Router /api/core/reports/advisors [get]
func GetAdvisorReport(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loans, err := h.LoanDB.ListLoans(c.Context())
		if err != nil {
			return FiberErrorResponse(c, "failed listing loans", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "advisor effectiveness", ledger.ComputeAdvisorEffectiveness(loans))
	}
}

// ClearDashboardCache drops the cached aggregates after bulk corrections.
func ClearDashboardCache(h *Handler, rcache *cache.Cache) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if rcache != nil {
			if err := rcache.Delete(c.Context(), dashboardCacheKey); err != nil && err != cache.ErrCacheMiss {
				return FiberErrorResponse(c, "failed clearing cache", err)
			}
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "cache cleared", nil)
	}
}
