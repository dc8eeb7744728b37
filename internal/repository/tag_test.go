package repository

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	tag := &models.Tag{Name: "golang", Description: "Go articles"}
	require.NoError(t, repo.Create(ctx, tag))
	assert.NotZero(t, tag.ID)

	t.Run("GetByID", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, "golang", fetched.Name)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("GetByName", func(t *testing.T) {
		fetched, err := repo.GetByName(ctx, "golang")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, tag.ID, fetched.ID)
	})

	t.Run("GetByName absent returns nil, nil", func(t *testing.T) {
		fetched, err := repo.GetByName(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := repo.Create(ctx, &models.Tag{Name: "golang"})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeConflict, appErr.Code)
		assert.Equal(t, "name", appErr.Field)
	})
}

func TestTagRepository_GetByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	first := &models.Tag{Name: "one"}
	second := &models.Tag{Name: "two"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("all present", func(t *testing.T) {
		tags, err := repo.GetByIDs(ctx, []uint{first.ID, second.ID})
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("partial resolution omits absent ids", func(t *testing.T) {
		tags, err := repo.GetByIDs(ctx, []uint{first.ID, 9999})
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, first.ID, tags[0].ID)
	})

	t.Run("empty input", func(t *testing.T) {
		tags, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

func TestTagRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	for _, name := range []string{"zebra", "alpha", "middle"} {
		require.NoError(t, repo.Create(ctx, &models.Tag{Name: name}))
	}

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "middle", tags[1].Name)
	assert.Equal(t, "zebra", tags[2].Name)
}

func TestTagRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	tag := &models.Tag{Name: "rename-me"}
	require.NoError(t, repo.Create(ctx, tag))
	other := &models.Tag{Name: "taken"}
	require.NoError(t, repo.Create(ctx, other))

	t.Run("update", func(t *testing.T) {
		tag.Description = "now described"
		require.NoError(t, repo.Update(ctx, tag))

		fetched, err := repo.GetByID(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, "now described", fetched.Description)
	})

	t.Run("update to taken name", func(t *testing.T) {
		tag.Name = "taken"
		err := repo.Update(ctx, tag)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeConflict, appErr.Code)
		tag.Name = "rename-me"
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, tag.ID))
		_, err := repo.GetByID(ctx, tag.ID)
		assert.Error(t, err)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := repo.Delete(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}
