package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/accounts.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	account, token, err := s.accountService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":   token,
		"account": account,
	})
}

// GetAccount handles GET /api/accounts/:id.
func (s *Server) GetAccount(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	account, err := s.accountService.GetAccount(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(account)
}

// ListAccounts handles GET /api/accounts.
func (s *Server) ListAccounts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	accounts, err := s.accountService.ListAccounts(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(accounts)
}

// GetAccountArticles handles GET /api/accounts/:id/articles.
func (s *Server) GetAccountArticles(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	// The account must exist; an empty article list is not a 404.
	if _, err := s.accountService.GetAccount(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, err)
	}

	articles, err := s.articleService.ListArticles(c.UserContext(), repository.ArticleFilter{
		AuthorID: id,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(articles)
}

// UpdateAccount handles PUT /api/accounts/:id.
func (s *Server) UpdateAccount(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	account, err := s.accountService.UpdateAccount(c.UserContext(), middleware.IdentityFromCtx(c), service.UpdateAccountInput{
		AccountID: id,
		Username:  req.Username,
		Email:     req.Email,
		Bio:       req.Bio,
		Avatar:    req.Avatar,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(account)
}

// DeleteAccount handles DELETE /api/accounts/:id. The account's articles go
// with it.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.accountService.DeleteAccount(c.UserContext(), middleware.IdentityFromCtx(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
