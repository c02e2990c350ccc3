package handlers

import (
	"github.com/alexisbanda/invercorp-backend/ledger"
	"github.com/gofiber/fiber/v2"
)

// @Summary Promotional credit simulator.
// @Description flat-rate quote for the marketing calculators; distinct from the amortized schedule.
// @Tags simulator
// @Accept json
// @Produce json
// @Success 200 {object} ledger.SimulationResult
// @Router /api/core/simulator/credit [post]
func SimulateCredit(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var input struct {
			Amount     float64 `json:"amount"`
			TermMonths int     `json:"term_months"`
		}
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		result, err := ledger.SimulateSimpleInterest(input.Amount, input.TermMonths)
		if err != nil {
			return FiberErrorResponse(c, "failed to simulate credit", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "credit simulation", result)
	}
}

// @Summary Amortization preview.
// @Description compute a schedule without persisting a loan; used by the credit form.
// @Tags simulator
// @Accept json
// @Param params body ledger.ScheduleParams true "Schedule parameters"
// @Produce json
// @Success 200 {object} ledger.Schedule
// @Router /api/core/simulator/schedule [post]
func PreviewSchedule(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var input ledger.ScheduleParams
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		schedule, err := ledger.ComputeSchedule(input)
		if err != nil {
			return FiberErrorResponse(c, "failed to compute schedule", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "amortization schedule", schedule)
	}
}
