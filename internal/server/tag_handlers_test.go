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

func TestCreateTag(t *testing.T) {
	_, app, _ := newTestApp(t)
	_, token := registerAccount(t, app, "curator")

	t.Run("anonymous gets 401", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tags", "", fiber.Map{"name": "go"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("name is normalized and stored", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tags", token, fiber.Map{"name": "  GoLang  "})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var tag models.Tag
		decodeBody(t, resp, &tag)
		assert.Equal(t, "golang", tag.Name)
	})

	t.Run("duplicate name is 409", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/tags", token, fiber.Map{"name": "golang"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "name", body.Field)
	})
}

func TestListTags_OrderedByName(t *testing.T) {
	_, app, _ := newTestApp(t)
	_, token := registerAccount(t, app, "curator")

	createTag(t, app, token, "zebra")
	createTag(t, app, token, "alpha")

	resp := doJSON(t, app, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tags []models.Tag
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "zebra", tags[1].Name)
}

func TestUpdateTag(t *testing.T) {
	_, app, _ := newTestApp(t)
	_, token := registerAccount(t, app, "curator")
	tagID := createTag(t, app, token, "original")
	createTag(t, app, token, "taken")
	tagPath := fmt.Sprintf("/api/tags/%d", tagID)

	t.Run("any identified account may edit", func(t *testing.T) {
		_, otherToken := registerAccount(t, app, "other")
		resp := doJSON(t, app, http.MethodPut, tagPath, otherToken, fiber.Map{"description": "shared taxonomy"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var tag models.Tag
		decodeBody(t, resp, &tag)
		assert.Equal(t, "shared taxonomy", tag.Description)
	})

	t.Run("rename to a taken name is 409", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, tagPath, token, fiber.Map{"name": "taken"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, tagPath, "", fiber.Map{"name": "x"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDeleteTag_DetachesEverywhere(t *testing.T) {
	_, app, db := newTestApp(t)
	_, token := registerAccount(t, app, "curator")

	doomedID := createTag(t, app, token, "doomed")
	keptID := createTag(t, app, token, "kept")
	firstID := createArticle(t, app, token, "First", []uint{doomedID, keptID})
	createArticle(t, app, token, "Second", []uint{doomedID})

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/tags/%d", doomedID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The tag record is gone.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/tags/%d", doomedID), "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// No article still references it.
	var joinRows int64
	db.Table("article_tags").Where("tag_id = ?", doomedID).Count(&joinRows)
	assert.Zero(t, joinRows)

	resp = doJSON(t, app, http.MethodGet, articleURL(firstID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var article models.Article
	decodeBody(t, resp, &article)
	require.Len(t, article.Tags, 1)
	assert.Equal(t, keptID, article.Tags[0].ID)
}

func TestGetTagArticles(t *testing.T) {
	_, app, _ := newTestApp(t)
	_, token := registerAccount(t, app, "curator")

	goID := createTag(t, app, token, "go")
	createTag(t, app, token, "unused")
	taggedID := createArticle(t, app, token, "Tagged", []uint{goID})
	createArticle(t, app, token, "Untagged", nil)

	t.Run("resolves through the join table", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/tags/%d/articles", goID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var articles []models.Article
		decodeBody(t, resp, &articles)
		require.Len(t, articles, 1)
		assert.Equal(t, taggedID, articles[0].ID)
	})

	t.Run("unknown tag is 404", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/tags/9999/articles", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
