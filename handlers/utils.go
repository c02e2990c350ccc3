package handlers

import (
	"errors"

	"github.com/alexisbanda/invercorp-backend/ledger"
	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/alexisbanda/invercorp-backend/store"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SMSSender is what the handlers need from the Twilio client.
type SMSSender interface {
	SendSMS(to, body string) error
}

type Handler struct {
	Loans     *ledger.InstallmentLedger
	Savings   *ledger.SavingsPlanLedger
	LoanDB    store.LoanStore
	SavingsDB store.SavingsStore
	UserDB    store.UserStore
	L         *logrus.Logger
	SMS       SMSSender
}

func NewHandler(loanDB store.LoanStore, savingsDB store.SavingsStore, userDB store.UserStore, l *logrus.Logger, sms SMSSender) *Handler {
	return &Handler{
		Loans:     ledger.NewInstallmentLedger(loanDB, l),
		Savings:   ledger.NewSavingsPlanLedger(savingsDB, l),
		LoanDB:    loanDB,
		SavingsDB: savingsDB,
		UserDB:    userDB,
		L:         l,
		SMS:       sms,
	}
}

// IdentityLocal is the fiber locals key the auth middleware stores the
// resolved identity under.
const IdentityLocal = "identity"

// GetIdentity returns the acting principal resolved by the auth middleware.
func GetIdentity(c *fiber.Ctx) models.Identity {
	if id, ok := c.Locals(IdentityLocal).(models.Identity); ok {
		return id
	}
	return models.Identity{}
}

func FiberJsonResponse(c *fiber.Ctx, httpStatus int, status, message string, data any) error {
	return c.Status(httpStatus).JSON(fiber.Map{"status": status, "message": message, "data": data})
}

// FiberErrorResponse maps the ledger error taxonomy onto HTTP statuses.
func FiberErrorResponse(c *fiber.Ctx, message string, err error) error {
	httpStatus := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		httpStatus = fiber.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		httpStatus = fiber.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		httpStatus = fiber.StatusConflict
	case errors.Is(err, models.ErrRemote):
		httpStatus = fiber.StatusBadGateway
	}
	return FiberJsonResponse(c, httpStatus, "error", message, err.Error())
}

// notifyClient sends a best-effort SMS to the portal user behind an auth uid.
func (h *Handler) notifyClient(c *fiber.Ctx, clientID, body string) {
	if h.SMS == nil || h.UserDB == nil {
		return
	}
	user, err := h.UserDB.GetUserByAuthUID(c.Context(), clientID)
	if err != nil || user.PhoneNumber == "" {
		return
	}
	if err := h.SMS.SendSMS(user.PhoneNumber, body); err != nil {
		h.L.WithField("client_id", clientID).Warn("sms notification failed")
	}
}
