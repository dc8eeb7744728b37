package server

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArticle(t *testing.T) {
	_, app, db := newTestApp(t)
	authorID, token := registerAccount(t, app, "writer")

	t.Run("anonymous gets 401 and nothing is stored", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/articles", "", fiber.Map{
			"title":   "Drive-by",
			"content": "c",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var count int64
		db.Model(&models.Article{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("authenticated author owns the article", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/articles", token, fiber.Map{
			"title":   "Hello",
			"content": "World",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var article models.Article
		decodeBody(t, resp, &article)
		assert.Equal(t, authorID, article.AuthorID)
		require.NotNil(t, article.Author)
		assert.Equal(t, "writer", article.Author.Username)
	})

	t.Run("missing tag reference is 422 and stores nothing", func(t *testing.T) {
		goID := createTag(t, app, token, "go")

		var before int64
		db.Model(&models.Article{}).Count(&before)

		resp := doJSON(t, app, http.MethodPost, "/api/articles", token, fiber.Map{
			"title":   "Tagged",
			"content": "c",
			"tag_ids": []uint{goID, 9999},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, models.CodeUnresolvedReference, body.Code)
		assert.Equal(t, []uint{9999}, body.MissingIDs)

		var after int64
		db.Model(&models.Article{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("valid tags are embedded in the response", func(t *testing.T) {
		webID := createTag(t, app, token, "web")

		resp := doJSON(t, app, http.MethodPost, "/api/articles", token, fiber.Map{
			"title":   "With tags",
			"content": "c",
			"tag_ids": []uint{webID},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var article models.Article
		decodeBody(t, resp, &article)
		require.Len(t, article.Tags, 1)
		assert.Equal(t, "web", article.Tags[0].Name)
	})
}

func TestListArticles(t *testing.T) {
	_, app, _ := newTestApp(t)
	aliceID, aliceToken := registerAccount(t, app, "alice")
	_, bobToken := registerAccount(t, app, "bob")

	goID := createTag(t, app, aliceToken, "go")
	firstID := createArticle(t, app, aliceToken, "First", []uint{goID})
	secondID := createArticle(t, app, aliceToken, "Second", nil)
	thirdID := createArticle(t, app, bobToken, "Third", []uint{goID})

	t.Run("newest first", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/articles", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var articles []models.Article
		decodeBody(t, resp, &articles)
		require.Len(t, articles, 3)
		assert.Equal(t, thirdID, articles[0].ID)
		assert.Equal(t, firstID, articles[2].ID)
	})

	t.Run("filter by author", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/articles?author=%d", aliceID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var articles []models.Article
		decodeBody(t, resp, &articles)
		require.Len(t, articles, 2)
		assert.Equal(t, secondID, articles[0].ID)
	})

	t.Run("filter by tag", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/articles?tag=%d", goID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var articles []models.Article
		decodeBody(t, resp, &articles)
		require.Len(t, articles, 2)
	})
}

func TestUpdateArticle(t *testing.T) {
	_, app, _ := newTestApp(t)
	_, ownerToken := registerAccount(t, app, "owner")
	_, strangerToken := registerAccount(t, app, "stranger")
	articleID := createArticle(t, app, ownerToken, "Original", nil)

	t.Run("owner edits", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, articleURL(articleID), ownerToken, fiber.Map{"title": "Edited"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var article models.Article
		decodeBody(t, resp, &article)
		assert.Equal(t, "Edited", article.Title)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, articleURL(articleID), strangerToken, fiber.Map{"title": "Hijack"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("tag replacement revalidates the whole set", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, articleURL(articleID), ownerToken, fiber.Map{
			"tag_ids": []uint{12345},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("empty set clears the tags", func(t *testing.T) {
		goID := createTag(t, app, ownerToken, "go")
		resp := doJSON(t, app, http.MethodPut, articleURL(articleID), ownerToken, fiber.Map{
			"tag_ids": []uint{goID},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, app, http.MethodPut, articleURL(articleID), ownerToken, fiber.Map{
			"tag_ids": []uint{},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var article models.Article
		decodeBody(t, resp, &article)
		assert.Empty(t, article.Tags)
	})
}

func TestDeleteArticle(t *testing.T) {
	_, app, db := newTestApp(t)
	_, ownerToken := registerAccount(t, app, "owner")
	_, strangerToken := registerAccount(t, app, "stranger")
	articleID := createArticle(t, app, ownerToken, "Target", nil)

	t.Run("stranger is forbidden and the article survives", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, articleURL(articleID), strangerToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		var count int64
		db.Model(&models.Article{}).Where("id = ?", articleID).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("owner deletes", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, articleURL(articleID), ownerToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, app, http.MethodGet, articleURL(articleID), "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestArticleTagRoutes(t *testing.T) {
	_, app, _ := newTestApp(t)
	_, ownerToken := registerAccount(t, app, "owner")
	_, strangerToken := registerAccount(t, app, "stranger")

	goID := createTag(t, app, ownerToken, "go")
	webID := createTag(t, app, ownerToken, "web")
	articleID := createArticle(t, app, ownerToken, "Taggable", nil)
	tagsPath := articleURL(articleID) + "/tags"

	t.Run("attach is idempotent", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, tagsPath, ownerToken, fiber.Map{"tag_ids": []uint{goID}})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, app, http.MethodPost, tagsPath, ownerToken, fiber.Map{"tag_ids": []uint{goID, webID}})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var article models.Article
		decodeBody(t, resp, &article)
		assert.Len(t, article.Tags, 2)
	})

	t.Run("stranger may not retag", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, tagsPath, strangerToken, fiber.Map{"tag_ids": []uint{goID}})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("attach of an unknown tag is 422", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, tagsPath, ownerToken, fiber.Map{"tag_ids": []uint{4242}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("detach is a no-op for absent tags", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, tagsPath, ownerToken, fiber.Map{"tag_ids": []uint{webID}})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// Detaching again changes nothing.
		resp = doJSON(t, app, http.MethodDelete, tagsPath, ownerToken, fiber.Map{"tag_ids": []uint{webID}})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var article models.Article
		decodeBody(t, resp, &article)
		require.Len(t, article.Tags, 1)
		assert.Equal(t, goID, article.Tags[0].ID)
	})

	t.Run("list tags", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, tagsPath, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var tags []models.Tag
		decodeBody(t, resp, &tags)
		require.Len(t, tags, 1)
		assert.Equal(t, "go", tags[0].Name)
	})
}
