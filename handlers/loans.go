package handlers

import (
	"github.com/alexisbanda/invercorp-backend/ledger"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// @Summary Create a loan.
// @Description create a loan with its amortized installment schedule.
// @Tags loans
// @Accept json
// @Param loan body ledger.CreateLoanParams true "Loan parameters"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans [post]
func CreateLoan(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		var input ledger.CreateLoanParams
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		loan, err := h.Loans.CreateLoan(c.Context(), GetIdentity(c), input)
		if err != nil {
			return FiberErrorResponse(c, "failed to create loan", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "loan created", loan)
	}
}

// @Summary Get a single loan.
// @Description fetch a loan by id; pending installments past due are derived to VENCIDO.
// @Tags loans
// @Param id path string true "Loan ID"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans/:id [get]
func GetLoan(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loanID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid loan id", err.Error())
		}
		loan, err := h.Loans.RefreshOverdue(c.Context(), loanID)
		if err != nil {
			return FiberErrorResponse(c, "loan not found", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "loan", loan)
	}
}

// @Summary List loans.
// @Description list all loans, optionally filtered by client.
// @Tags loans
// @Param client_id query string false "Client ID"
// @Produce json
// @Success 200 {object} []models.Loan
// @Router /api/core/loans [get]
func ListLoans(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		clientID := c.Query("client_id")
		if clientID != "" {
			loans, err := h.LoanDB.ListLoansByClient(c.Context(), clientID)
			if err != nil {
				return FiberErrorResponse(c, "failed listing client loans", err)
			}
			return FiberJsonResponse(c, fiber.StatusOK, "success", "client loans", loans)
		}
		loans, err := h.LoanDB.ListLoans(c.Context())
		if err != nil {
			return FiberErrorResponse(c, "failed listing loans", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "loans", loans)
	}
}
