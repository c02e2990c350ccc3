package handlers

import (
	"fmt"

	"github.com/alexisbanda/invercorp-backend/ledger"
	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type amountRequest struct {
	Amount     float64 `json:"amount"`
	Notes      string  `json:"notes"`
	ReceiptURL string  `json:"receipt_url"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func parsePlanID(c *fiber.Ctx) (primitive.ObjectID, error) {
	planID, err := primitive.ObjectIDFromHex(c.Params("plan_id"))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid plan id")
	}
	return planID, nil
}

// @Summary Create a programmed-savings plan.
// @Description assign the next cartola number for the client and open the plan.
// @Tags savings
// @Accept json
// @Param client_id path string true "Client ID"
// @Param plan body ledger.PlanParams true "Plan parameters"
// @Produce json
// @Success 200 {object} models.ProgrammedSaving
// @Router /api/core/clients/:client_id/savings [post]
func CreateSavingsPlan(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var input ledger.PlanParams
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		plan, err := h.Savings.CreatePlan(c.Context(), GetIdentity(c), c.Params("client_id"), input)
		if err != nil {
			return FiberErrorResponse(c, "failed to create savings plan", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "savings plan created", plan)
	}
}

// @Summary List savings plans.
// @Description list plans for one client, or all plans when no client is given (admin view).
// @Tags savings
// @Param client_id query string false "Client ID"
// @Produce json
// @Success 200 {object} []models.ProgrammedSaving
// @Router /api/core/savings [get]
func ListSavingsPlans(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		clientID := c.Query("client_id")
		if clientID != "" {
			plans, err := h.SavingsDB.ListPlansByClient(c.Context(), clientID)
			if err != nil {
				return FiberErrorResponse(c, "failed listing client plans", err)
			}
			return FiberJsonResponse(c, fiber.StatusOK, "success", "client savings plans", plans)
		}
		plans, err := h.SavingsDB.ListPlans(c.Context())
		if err != nil {
			return FiberErrorResponse(c, "failed listing plans", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "savings plans", plans)
	}
}

// @Summary Get a savings plan.
// @Tags savings
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} models.ProgrammedSaving
// @Router /api/core/savings/:plan_id [get]
func GetSavingsPlan(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		plan, err := h.SavingsDB.GetPlan(c.Context(), planID)
		if err != nil {
			return FiberErrorResponse(c, "plan not found", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "savings plan", plan)
	}
}

// @Summary Change a plan's lifecycle status.
// @Tags savings
// @Accept json
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} models.ProgrammedSaving
// @Router /api/core/savings/:plan_id/status [put]
func UpdateSavingsPlanStatus(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input struct {
			Status models.PlanStatus `json:"status"`
		}
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		plan, err := h.Savings.UpdatePlanStatus(c.Context(), GetIdentity(c), planID, input.Status)
		if err != nil {
			return FiberErrorResponse(c, "failed to update plan status", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "plan status updated", plan)
	}
}

// @Summary List a plan's deposits.
// @Tags deposits
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} []models.Deposit
// @Router /api/core/savings/:plan_id/deposits [get]
func ListDeposits(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		deps, err := h.SavingsDB.ListDeposits(c.Context(), planID)
		if err != nil {
			return FiberErrorResponse(c, "failed listing deposits", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "plan deposits", deps)
	}
}

// @Summary Report a deposit.
// @Description client-facing: register a deposit awaiting admin verification.
// @Tags deposits
// @Accept json
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} models.Deposit
// @Router /api/core/savings/:plan_id/deposits [post]
func AddDeposit(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input amountRequest
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		dep, err := h.Savings.AddDeposit(c.Context(), GetIdentity(c), planID, input.Amount, input.Notes, input.ReceiptURL)
		if err != nil {
			return FiberErrorResponse(c, "failed to register deposit", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "deposit registered", dep)
	}
}

// @Summary Confirm a deposit.
// @Description admin decision: apply the amount to the plan balance in the same transaction.
// @Tags deposits
// @Param plan_id path string true "Plan ID"
// @Param deposit_id path string true "Deposit ID"
// @Produce json
// @Success 200 {object} models.ProgrammedSaving
// @Router /api/core/savings/:plan_id/deposits/:deposit_id/confirm [post]
func ConfirmDeposit(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		plan, err := h.Savings.ConfirmDeposit(c.Context(), GetIdentity(c), planID, c.Params("deposit_id"))
		if err != nil {
			return FiberErrorResponse(c, "failed to confirm deposit", err)
		}
		h.notifyClient(c, plan.ClienteID, fmt.Sprintf("Su depósito fue confirmado. Saldo actual: $%.2f", plan.SaldoActual))
		return FiberJsonResponse(c, fiber.StatusOK, "success", "deposit confirmed", plan)
	}
}

// @Summary Reject a deposit.
// @Description admin decision: refuse a reported deposit with a mandatory reason; balance untouched.
// @Tags deposits
// @Accept json
// @Param plan_id path string true "Plan ID"
// @Param deposit_id path string true "Deposit ID"
// @Produce json
// @Success 200 {object} models.Deposit
// @Router /api/core/savings/:plan_id/deposits/:deposit_id/reject [post]
func RejectDeposit(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input reasonRequest
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		dep, err := h.Savings.RejectDeposit(c.Context(), GetIdentity(c), planID, c.Params("deposit_id"), input.Reason)
		if err != nil {
			return FiberErrorResponse(c, "failed to reject deposit", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "deposit rejected", dep)
	}
}

// @Summary Register a manual deposit.
// @Description admin over-the-counter entry: created and confirmed in one transaction.
// @Tags deposits
// @Accept json
// @Param plan_id path string true "Plan ID"
// @Produce json
// @Success 200 {object} models.Deposit
// @Router /api/core/savings/:plan_id/deposits/manual [post]
func AddManualDeposit(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input amountRequest
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		dep, err := h.Savings.AddManualDeposit(c.Context(), GetIdentity(c), planID, input.Amount, input.Notes)
		if err != nil {
			return FiberErrorResponse(c, "failed to register manual deposit", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "manual deposit registered", dep)
	}
}

// @Summary Delete a deposit.
// @Description compensating operation: deleting a confirmed deposit reverses its balance contribution.
// @Tags deposits
// @Param plan_id path string true "Plan ID"
// @Param deposit_id path string true "Deposit ID"
// @Produce json
// @Success 200
// @Router /api/core/savings/:plan_id/deposits/:deposit_id [delete]
func DeleteDeposit(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		planID, err := parsePlanID(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		if err := h.Savings.DeleteDeposit(c.Context(), GetIdentity(c), planID, c.Params("deposit_id")); err != nil {
			return FiberErrorResponse(c, "failed to delete deposit", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "deposit deleted", nil)
	}
}
