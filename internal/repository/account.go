// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	List(ctx context.Context, limit, offset int) ([]models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id uint) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new AccountRepository implementation.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// accountCacheEntry is the cached projection of an account. The Account JSON
// shape strips the credential digest, so caching the model directly would
// hand back accounts with an empty digest on a hit and a later Save would
// persist the loss.
type accountCacheEntry struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAccountCacheEntry(account *models.Account) accountCacheEntry {
	return accountCacheEntry{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Password:  account.Password,
		Bio:       account.Bio,
		Avatar:    account.Avatar,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

func (e accountCacheEntry) account() *models.Account {
	return &models.Account{
		ID:        e.ID,
		Username:  e.Username,
		Email:     e.Email,
		Password:  e.Password,
		Bio:       e.Bio,
		Avatar:    e.Avatar,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var entry accountCacheEntry
	key := cache.AccountKey(id)

	err := cache.Aside(ctx, key, &entry, cache.AccountTTL, func() error {
		defer observability.TrackStoreCall("get", "account")()
		var account models.Account
		if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Account", id)
			}
			return models.NewInternalError(err)
		}
		entry = newAccountCacheEntry(&account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry.account(), nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, limit, offset int) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&accounts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return accounts, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	defer observability.TrackStoreCall("create", "account")()
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if field, ok := uniqueViolationField(err, "email", "username"); ok {
			return models.NewConflictError(field)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	defer observability.TrackStoreCall("update", "account")()
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		if field, ok := uniqueViolationField(err, "email", "username"); ok {
			return models.NewConflictError(field)
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateAccount(ctx, account.ID)
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackStoreCall("delete", "account")()
	result := r.db.WithContext(ctx).Delete(&models.Account{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Account", id)
	}
	cache.InvalidateAccount(ctx, id)
	return nil
}

// uniqueViolationField checks whether err is a unique constraint violation
// and, if so, names the violated field. Services pre-check uniqueness; this
// is the backstop for racing writers, using the database's own verdict.
func uniqueViolationField(err error, fields ...string) (string, bool) {
	if err == nil {
		return "", false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505, sqlite "UNIQUE constraint failed"
	if !strings.Contains(msg, "duplicate key") &&
		!strings.Contains(msg, "unique constraint") &&
		!strings.Contains(msg, "23505") {
		return "", false
	}
	for _, field := range fields {
		if strings.Contains(msg, field) {
			return field, true
		}
	}
	if len(fields) > 0 {
		return fields[0], true
	}
	return "", false
}
