package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id uint) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	defer observability.TrackStoreCall("get", "tag")()
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// GetByIDs returns the tags that exist among ids; absent ids are simply not
// in the result, callers decide what a partial resolution means.
func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	defer observability.TrackStoreCall("get_set", "tag")()
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := cache.Aside(ctx, cache.TagListKey(), &tags, cache.TagListTTL, func() error {
		defer observability.TrackStoreCall("list", "tag")()
		if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	defer observability.TrackStoreCall("create", "tag")()
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if field, ok := uniqueViolationField(err, "name"); ok {
			return models.NewConflictError(field)
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTagList(ctx)
	return nil
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	defer observability.TrackStoreCall("update", "tag")()
	if err := r.db.WithContext(ctx).Save(tag).Error; err != nil {
		if field, ok := uniqueViolationField(err, "name"); ok {
			return models.NewConflictError(field)
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTagList(ctx)
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackStoreCall("delete", "tag")()
	result := r.db.WithContext(ctx).Delete(&models.Tag{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Tag", id)
	}
	cache.InvalidateTagList(ctx)
	return nil
}
