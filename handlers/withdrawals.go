package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// @Summary List a plan's withdrawals.
// @Tags withdrawals
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} []models.Withdrawal
// @Router /api/core/savings/:plan_id/withdrawals [get]
func ListWithdrawals(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		wds, err := h.SavingsDB.ListWithdrawals(c.Context(), planID)
		if err != nil {
			return FiberErrorResponse(c, "failed listing withdrawals", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "plan withdrawals", wds)
	}
}

// @Summary Request a withdrawal.
// @Description client-facing: requests above the current balance are refused.
// @Tags withdrawals
// @Accept json
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} models.Withdrawal
// @Router /api/core/savings/:plan_id/withdrawals [post]
func RequestWithdrawal(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input amountRequest
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		wd, err := h.Savings.RequestWithdrawal(c.Context(), GetIdentity(c), planID, input.Amount, input.Notes)
		if err != nil {
			return FiberErrorResponse(c, "failed to request withdrawal", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "withdrawal requested", wd)
	}
}

// @Summary Process a withdrawal.
// @Description admin decision: decrement the balance and mark Procesado in one transaction.
// @Tags withdrawals
// @Param plan_id path string true "Plan ID"
// @Param withdrawal_id path string true "Withdrawal ID"
// @Produce json
// @Success 200 {object} models.ProgrammedSaving
// @Router /api/core/savings/:plan_id/withdrawals/:withdrawal_id/process [post]
func ProcessWithdrawal(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		plan, err := h.Savings.ProcessWithdrawal(c.Context(), GetIdentity(c), planID, c.Params("withdrawal_id"))
		if err != nil {
			return FiberErrorResponse(c, "failed to process withdrawal", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "withdrawal processed", plan)
	}
}

// @Summary Reject a withdrawal request.
// @Tags withdrawals
// @Accept json
// @Param plan_id path string true "Plan ID"
// @Param withdrawal_id path string true "Withdrawal ID"
// @Produce json
// @Success 200 {object} models.Withdrawal
// @Router /api/core/savings/:plan_id/withdrawals/:withdrawal_id/reject [post]
func RejectWithdrawal(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input reasonRequest
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		wd, err := h.Savings.RejectWithdrawal(c.Context(), GetIdentity(c), planID, c.Params("withdrawal_id"), input.Reason)
		if err != nil {
			return FiberErrorResponse(c, "failed to reject withdrawal", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "withdrawal rejected", wd)
	}
}

// @Summary Register a manual withdrawal.
// @Description admin over-the-counter payout: requested and processed in one transaction.
// @Tags withdrawals
// @Accept json
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} models.Withdrawal
// @Router /api/core/savings/:plan_id/withdrawals/manual [post]
func RegisterManualWithdrawal(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input amountRequest
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		wd, err := h.Savings.RegisterManualWithdrawal(c.Context(), GetIdentity(c), planID, input.Amount, input.Notes)
		if err != nil {
			return FiberErrorResponse(c, "failed to register manual withdrawal", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "manual withdrawal registered", wd)
	}
}
