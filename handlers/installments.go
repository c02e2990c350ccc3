package handlers

import (
	"fmt"

	"github.com/alexisbanda/invercorp-backend/ledger"
	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseLoanRef(c *fiber.Ctx) (primitive.ObjectID, int, error) {
	loanID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, 0, fmt.Errorf("invalid loan id")
	}
	number, err := c.ParamsInt("number")
	if err != nil {
		return primitive.NilObjectID, 0, fmt.Errorf("invalid installment number")
	}
	return loanID, number, nil
}

// @Summary Report an installment payment.
// @Description client-facing: mark an installment EN VERIFICACIÓN with report notes and optional receipt.
// @Tags installments
// @Accept json
// @Param id path string true "Loan ID"
// @Param number path int true "Installment number"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans/:id/installments/:number/report [post]
func ReportInstallmentPayment(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loanID, number, err := parseLoanRef(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input struct {
			Notes      string `json:"notes"`
			ReceiptURL string `json:"receipt_url"`
		}
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		loan, err := h.Loans.ReportPayment(c.Context(), GetIdentity(c), loanID, number, input.Notes, input.ReceiptURL)
		if err != nil {
			return FiberErrorResponse(c, "failed to report payment", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "payment reported", loan)
	}
}

// @Summary Approve an installment.
// @Description admin decision: mark a reported installment PAGADO; completes the loan when it was the last one.
// @Tags installments
// @Param id path string true "Loan ID"
// @Param number path int true "Installment number"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans/:id/installments/:number/approve [post]
func ApproveInstallment(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loanID, number, err := parseLoanRef(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		loan, completed, err := h.Loans.Approve(c.Context(), GetIdentity(c), loanID, number)
		if err != nil {
			return FiberErrorResponse(c, "failed to approve installment", err)
		}
		if completed {
			h.notifyClient(c, loan.ClientID, "¡Felicitaciones! Su crédito INVERCORP ha sido completado.")
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "installment approved", loan)
	}
}

// @Summary Reject a reported installment payment.
// @Description admin decision: reopen the installment (POR VENCER or VENCIDO) with a mandatory reason.
// @Tags installments
// @Accept json
// @Param id path string true "Loan ID"
// @Param number path int true "Installment number"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans/:id/installments/:number/reject [post]
func RejectInstallment(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loanID, number, err := parseLoanRef(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var input struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&input); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		loan, err := h.Loans.Reject(c.Context(), GetIdentity(c), loanID, number, input.Reason)
		if err != nil {
			return FiberErrorResponse(c, "failed to reject payment report", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "payment report rejected", loan)
	}
}

// @Summary Insert an installment.
// @Description administrative schedule correction; later numbers shift up.
// @Tags installments
// @Accept json
// @Param id path string true "Loan ID"
// @Param installment body models.Installment true "Installment to insert"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans/:id/installments [post]
func InsertInstallment(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loanID, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "invalid loan id", err.Error())
		}
		var inst models.Installment
		if err := c.BodyParser(&inst); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		loan, err := h.Loans.InsertInstallment(c.Context(), GetIdentity(c), loanID, inst)
		if err != nil {
			return FiberErrorResponse(c, "failed to insert installment", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "installment inserted", loan)
	}
}

// @Summary Update an installment.
// @Description administrative correction of due date, amount, status or notes.
// @Tags installments
// @Accept json
// @Param id path string true "Loan ID"
// @Param number path int true "Installment number"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans/:id/installments/:number [put]
func UpdateInstallment(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loanID, number, err := parseLoanRef(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		var upd ledger.InstallmentUpdate
		if err := c.BodyParser(&upd); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}
		loan, err := h.Loans.UpdateInstallment(c.Context(), GetIdentity(c), loanID, number, upd)
		if err != nil {
			return FiberErrorResponse(c, "failed to update installment", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "installment updated", loan)
	}
}

// @Summary Remove an installment.
// @Description administrative schedule correction; later numbers shift down.
// @Tags installments
// @Param id path string true "Loan ID"
// @Param number path int true "Installment number"
// @Produce json
// @Success 200 {object} models.Loan
// @Router /api/core/loans/:id/installments/:number [delete]
func RemoveInstallment(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		loanID, number, err := parseLoanRef(c)
		if err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", err.Error(), nil)
		}
		loan, err := h.Loans.RemoveInstallment(c.Context(), GetIdentity(c), loanID, number)
		if err != nil {
			return FiberErrorResponse(c, "failed to remove installment", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "installment removed", loan)
	}
}
