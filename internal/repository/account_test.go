package repository

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &models.Account{Username: "maren", Email: "maren@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, account))
	assert.NotZero(t, account.ID)

	t.Run("GetByID", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "maren", fetched.Username)
	})

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("GetByEmail", func(t *testing.T) {
		fetched, err := repo.GetByEmail(ctx, "maren@example.com")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, account.ID, fetched.ID)
	})

	t.Run("GetByEmail absent returns nil, nil", func(t *testing.T) {
		fetched, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.NoError(t, err)
		assert.Nil(t, fetched)
	})

	t.Run("GetByUsername absent returns nil, nil", func(t *testing.T) {
		fetched, err := repo.GetByUsername(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, fetched)
	})
}

func TestAccountRepository_UniqueViolations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Account{Username: "first", Email: "first@example.com", Password: "x"}))

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, &models.Account{Username: "second", Email: "first@example.com", Password: "x"})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeConflict, appErr.Code)
		assert.Equal(t, "email", appErr.Field)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(ctx, &models.Account{Username: "first", Email: "other@example.com", Password: "x"})
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeConflict, appErr.Code)
		assert.Equal(t, "username", appErr.Field)
	})
}

func TestAccountRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &models.Account{Username: name, Email: name + "@example.com", Password: "x"}))
	}

	accounts, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	// Newest first.
	assert.Equal(t, "c", accounts[0].Username)
	assert.Equal(t, "a", accounts[2].Username)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Username)
}

func TestAccountRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &models.Account{Username: "edit", Email: "edit@example.com", Password: "x"}
	require.NoError(t, repo.Create(ctx, account))

	account.Bio = "updated bio"
	require.NoError(t, repo.Update(ctx, account))

	fetched, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated bio", fetched.Bio)

	require.NoError(t, repo.Delete(ctx, account.ID))

	_, err = repo.GetByID(ctx, account.ID)
	assert.Error(t, err)

	t.Run("delete missing", func(t *testing.T) {
		err := repo.Delete(ctx, 9999)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestAccountRepository_CachedReadKeepsCredential(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	account := &models.Account{Username: "warm", Email: "warm@example.com", Password: "$2a$10$digest"}
	require.NoError(t, repo.Create(ctx, account))

	// First read warms the cache, second read is served from it.
	_, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	cached, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$digest", cached.Password,
		"cache hit must return the account with its credential digest")

	// A profile edit on the cached read must not wipe the stored digest.
	cached.Bio = "refreshed"
	require.NoError(t, repo.Update(ctx, cached))

	var stored models.Account
	require.NoError(t, db.First(&stored, account.ID).Error)
	assert.Equal(t, "$2a$10$digest", stored.Password)
	assert.Equal(t, "refreshed", stored.Bio)
}
