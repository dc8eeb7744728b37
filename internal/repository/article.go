package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// ArticleFilter narrows List results. Zero values mean no filtering.
type ArticleFilter struct {
	AuthorID uint
	TagID    uint
	Limit    int
	Offset   int
}

// ArticleRepository defines persistence operations for articles, including
// the set-based tag association writes. The set writes are single atomic
// statements against the join table; idempotency lives here, not in callers.
type ArticleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	ReplaceTags(ctx context.Context, article *models.Article, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) error
	AddTags(ctx context.Context, articleID uint, tagIDs []uint) error
	RemoveTags(ctx context.Context, articleID uint, tagIDs []uint) error
	DetachTagFromAll(ctx context.Context, tagID uint) error
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := cache.Aside(ctx, cache.ArticleKey(id), &article, cache.ArticleTTL, func() error {
		defer observability.TrackStoreCall("get", "article")()
		if err := r.db.WithContext(ctx).
			Preload("Author").
			Preload("Tags").
			First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Article", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]models.Article, error) {
	defer observability.TrackStoreCall("list", "article")()
	query := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Order("articles.created_at DESC, articles.id DESC")

	if filter.AuthorID != 0 {
		query = query.Where("articles.author_id = ?", filter.AuthorID)
	}
	if filter.TagID != 0 {
		// Derived reverse lookup: tag membership is resolved through the join
		// table, never stored on the tag.
		query = query.
			Joins("JOIN article_tags ON article_tags.article_id = articles.id").
			Where("article_tags.tag_id = ?", filter.TagID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var articles []models.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	defer observability.TrackStoreCall("create", "article")()
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	defer observability.TrackStoreCall("update", "article")()
	if err := r.db.WithContext(ctx).
		Omit("Tags").
		Save(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.ID)
	return nil
}

func (r *articleRepository) ReplaceTags(ctx context.Context, article *models.Article, tags []models.Tag) error {
	defer observability.TrackStoreCall("replace_tags", "article")()
	if err := r.db.WithContext(ctx).
		Model(article).
		Association("Tags").
		Replace(tags); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, article.ID)
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackStoreCall("delete", "article")()
	result := r.db.WithContext(ctx).Delete(&models.Article{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	cache.InvalidateArticle(ctx, id)
	return nil
}

func (r *articleRepository) DeleteByAuthor(ctx context.Context, authorID uint) error {
	defer observability.TrackStoreCall("delete_by_author", "article")()
	// Collect ids first so the per-article cache entries can be dropped.
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("author_id = ?", authorID).
		Pluck("id", &ids).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Delete(&models.Article{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, id := range ids {
		cache.InvalidateArticle(ctx, id)
	}
	return nil
}

func (r *articleRepository) AddTags(ctx context.Context, articleID uint, tagIDs []uint) error {
	defer observability.TrackStoreCall("add_tags", "article")()
	// INSERT ... ON CONFLICT DO NOTHING per row: atomic at the store level and
	// idempotent under concurrent adds of the same tag.
	for _, tagID := range tagIDs {
		if err := r.db.WithContext(ctx).Exec(
			`INSERT INTO article_tags (article_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			articleID, tagID,
		).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	cache.InvalidateArticle(ctx, articleID)
	return nil
}

func (r *articleRepository) RemoveTags(ctx context.Context, articleID uint, tagIDs []uint) error {
	defer observability.TrackStoreCall("remove_tags", "article")()
	if len(tagIDs) == 0 {
		return nil
	}
	// Set difference: deleting rows that are not there is a no-op.
	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM article_tags WHERE article_id = ? AND tag_id IN ?`,
		articleID, tagIDs,
	).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateArticle(ctx, articleID)
	return nil
}

func (r *articleRepository) DetachTagFromAll(ctx context.Context, tagID uint) error {
	defer observability.TrackStoreCall("detach_tag", "article")()
	var ids []uint
	if err := r.db.WithContext(ctx).
		Table("article_tags").
		Where("tag_id = ?", tagID).
		Pluck("article_id", &ids).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM article_tags WHERE tag_id = ?`,
		tagID,
	).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, id := range ids {
		cache.InvalidateArticle(ctx, id)
	}
	return nil
}
