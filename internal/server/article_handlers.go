package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateArticle handles POST /api/articles.
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		TagIDs  []uint `json:"tag_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	article, err := s.articleService.CreateArticle(c.UserContext(), middleware.IdentityFromCtx(c), service.CreateArticleInput{
		Title:   req.Title,
		Content: req.Content,
		TagIDs:  req.TagIDs,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// GetArticle handles GET /api/articles/:id.
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetArticle(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(article)
}

// ListArticles handles GET /api/articles with optional ?author= and ?tag=
// filters.
func (s *Server) ListArticles(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	filter := repository.ArticleFilter{Limit: p.Limit, Offset: p.Offset}
	if author := c.QueryInt("author", 0); author > 0 {
		filter.AuthorID = uint(author)
	}
	if tag := c.QueryInt("tag", 0); tag > 0 {
		filter.TagID = uint(tag)
	}

	articles, err := s.articleService.ListArticles(c.UserContext(), filter)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(articles)
}

// UpdateArticle handles PUT /api/articles/:id. Omitting tag_ids leaves the
// tag set alone; providing it (even empty) replaces the set.
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   string  `json:"title"`
		Content string  `json:"content"`
		TagIDs  *[]uint `json:"tag_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	article, err := s.articleService.UpdateArticle(c.UserContext(), middleware.IdentityFromCtx(c), service.UpdateArticleInput{
		ArticleID: id,
		Title:     req.Title,
		Content:   req.Content,
		TagIDs:    req.TagIDs,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /api/articles/:id.
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.articleService.DeleteArticle(c.UserContext(), middleware.IdentityFromCtx(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetArticleTags handles GET /api/articles/:id/tags.
func (s *Server) GetArticleTags(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetArticle(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(article.Tags)
}

// AddArticleTags handles POST /api/articles/:id/tags. Attaching a tag that
// is already present is a no-op.
func (s *Server) AddArticleTags(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		TagIDs []uint `json:"tag_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if len(req.TagIDs) == 0 {
		return models.RespondWithError(c, models.NewValidationError("tag_ids is required"))
	}

	article, err := s.articleService.AddTags(c.UserContext(), middleware.IdentityFromCtx(c), id, req.TagIDs)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(article)
}

// RemoveArticleTags handles DELETE /api/articles/:id/tags. Detaching a tag
// that is not attached is a no-op.
func (s *Server) RemoveArticleTags(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		TagIDs []uint `json:"tag_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if len(req.TagIDs) == 0 {
		return models.RespondWithError(c, models.NewValidationError("tag_ids is required"))
	}

	article, err := s.articleService.RemoveTags(c.UserContext(), middleware.IdentityFromCtx(c), id, req.TagIDs)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(article)
}
