package server

import (
	"inkwell/internal/authz"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login. Unknown email and wrong password
// produce the same response.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, models.NewValidationError("Email and password are required"))
	}

	account, token, err := s.accountService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"account": account,
	})
}

// Me handles GET /api/auth/me and returns the account behind the token.
func (s *Server) Me(c *fiber.Ctx) error {
	account, err := s.accountService.CurrentAccount(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(account)
}

// Logout handles POST /api/auth/logout. Sessions are stateless bearer
// tokens, so logout only acknowledges; the client discards the token.
func (s *Server) Logout(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)
	if err := authz.Authorize(identity, authz.ActionSessionLogout, 0); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
