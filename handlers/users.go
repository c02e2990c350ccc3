package handlers

import (
	"errors"
	"time"

	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/gofiber/fiber/v2"
)

// @Summary Create a user.
// @Description create a single portal user; existing emails are returned as-is.
// @Tags users
// @Accept json
// @Param user body models.User true "User to create"
// @Produce json
// @Success 200 {object} models.User
// @Router /api/core/users [post]
func CreateUser(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		nUser := new(models.User)
		if err := c.BodyParser(nUser); err != nil {
			return FiberJsonResponse(c, fiber.StatusBadRequest, "error", "request body malformed", err.Error())
		}

		existing, err := h.UserDB.GetUserByEmail(c.Context(), nUser.Email)
		if err == nil {
			return FiberJsonResponse(c, fiber.StatusOK, "success", "user already exists", existing)
		}
		if !errors.Is(err, models.ErrNotFound) {
			return FiberErrorResponse(c, "error checking if user already exists", err)
		}

		if nUser.Role == "" {
			nUser.Role = models.RoleCliente
		}
		nUser.CreatedAt = time.Now()
		nUser.UpdatedAt = time.Now()
		if err := h.UserDB.CreateUser(c.Context(), nUser); err != nil {
			return FiberErrorResponse(c, "failed to create user", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "new user created", nUser)
	}
}

// @Summary Get a single user.
// @Description fetch a single user by email.
// @Tags users
// @Param email path string true "User email"
// @Produce json
// @Success 200 {object} models.User
// @Router /api/core/users/:email [get]
func GetUser(h *Handler) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		user, err := h.UserDB.GetUserByEmail(c.Context(), c.Params("email"))
		if err != nil {
			return FiberErrorResponse(c, "user not found", err)
		}
		return FiberJsonResponse(c, fiber.StatusOK, "success", "found user", user)
	}
}
