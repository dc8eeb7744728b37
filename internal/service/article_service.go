package service

import (
	"context"
	"sort"
	"strings"

	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type ArticleService struct {
	articleRepo repository.ArticleRepository
	tagRepo     repository.TagRepository
}

type CreateArticleInput struct {
	Title   string
	Content string
	TagIDs  []uint
}

// UpdateArticleInput merges into the article. A nil TagIDs leaves the tag set
// untouched; a non-nil (even empty) slice replaces it after revalidation.
type UpdateArticleInput struct {
	ArticleID uint
	Title     string
	Content   string
	TagIDs    *[]uint
}

func NewArticleService(articleRepo repository.ArticleRepository, tagRepo repository.TagRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo, tagRepo: tagRepo}
}

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

// resolveTags loads the referenced tags and fails the whole operation when
// any id does not resolve. Nothing is written on a partial resolution.
func (s *ArticleService) resolveTags(ctx context.Context, tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	// Dedupe, the tag set is a set.
	seen := make(map[uint]struct{}, len(tagIDs))
	unique := make([]uint, 0, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	tags, err := s.tagRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		found := make(map[uint]struct{}, len(tags))
		for _, tag := range tags {
			found[tag.ID] = struct{}{}
		}
		var missing []uint
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, models.NewUnresolvedReferenceError(missing)
	}
	return tags, nil
}

func (s *ArticleService) CreateArticle(ctx context.Context, identity authz.Identity, in CreateArticleInput) (*models.Article, error) {
	if err := authz.Authorize(identity, authz.ActionArticleCreate, 0); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}

	article := &models.Article{
		Title:    title,
		Content:  in.Content,
		AuthorID: identity.AccountID,
		Tags:     tags,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, article.ID)
}

func (s *ArticleService) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

func (s *ArticleService) ListArticles(ctx context.Context, filter repository.ArticleFilter) ([]models.Article, error) {
	return s.articleRepo.List(ctx, filter)
}

func (s *ArticleService) UpdateArticle(ctx context.Context, identity authz.Identity, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(identity, authz.ActionArticleUpdate, article.AuthorID); err != nil {
		return nil, err
	}

	if in.Title != "" {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		article.Title = title
	}
	if in.Content != "" {
		if len(in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		article.Content = in.Content
	}

	// The replacement set is validated in full even if it overlaps the
	// current one; a stale id in the request fails the whole update.
	var replacement []models.Tag
	if in.TagIDs != nil {
		replacement, err = s.resolveTags(ctx, *in.TagIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	if in.TagIDs != nil {
		if err := s.articleRepo.ReplaceTags(ctx, article, replacement); err != nil {
			return nil, err
		}
	}
	return s.articleRepo.GetByID(ctx, article.ID)
}

func (s *ArticleService) DeleteArticle(ctx context.Context, identity authz.Identity, id uint) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(identity, authz.ActionArticleDelete, article.AuthorID); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return models.NewInternalError(err)
	}
	return s.articleRepo.Delete(ctx, id)
}

// AddTags attaches the given tags to the article. Tags already present are
// left alone, so retries and concurrent adds converge on the same set.
func (s *ArticleService) AddTags(ctx context.Context, identity authz.Identity, articleID uint, tagIDs []uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(identity, authz.ActionArticleTag, article.AuthorID); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return article, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, len(tags))
	for i, tag := range tags {
		ids[i] = tag.ID
	}
	if err := s.articleRepo.AddTags(ctx, articleID, ids); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, articleID)
}

// RemoveTags detaches the given tags. Removing a tag that is not attached, or
// that no longer exists, is a no-op rather than an error.
func (s *ArticleService) RemoveTags(ctx context.Context, identity authz.Identity, articleID uint, tagIDs []uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(identity, authz.ActionArticleTag, article.AuthorID); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.articleRepo.RemoveTags(ctx, articleID, tagIDs); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, articleID)
}
