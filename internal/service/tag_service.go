package service

import (
	"context"
	"strings"

	"inkwell/internal/authz"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

type TagService struct {
	tagRepo     repository.TagRepository
	articleRepo repository.ArticleRepository
}

type CreateTagInput struct {
	Name        string
	Description string
}

type UpdateTagInput struct {
	TagID       uint
	Name        string
	Description string
}

func NewTagService(tagRepo repository.TagRepository, articleRepo repository.ArticleRepository) *TagService {
	return &TagService{tagRepo: tagRepo, articleRepo: articleRepo}
}

const maxTagNameLen = 50

func (s *TagService) CreateTag(ctx context.Context, identity authz.Identity, in CreateTagInput) (*models.Tag, error) {
	if err := authz.Authorize(identity, authz.ActionTagCreate, 0); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(strings.ToLower(in.Name))
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(name) > maxTagNameLen {
		return nil, models.NewValidationError("Name too long (max 50 characters)")
	}

	if existing, err := s.tagRepo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("name")
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}

	tag := &models.Tag{Name: name, Description: in.Description}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tagRepo.GetByID(ctx, id)
}

func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *TagService) UpdateTag(ctx context.Context, identity authz.Identity, in UpdateTagInput) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, in.TagID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(identity, authz.ActionTagUpdate, 0); err != nil {
		return nil, err
	}

	if in.Name != "" {
		name := strings.TrimSpace(strings.ToLower(in.Name))
		if len(name) > maxTagNameLen {
			return nil, models.NewValidationError("Name too long (max 50 characters)")
		}
		if name != tag.Name {
			existing, err := s.tagRepo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("name")
			}
		}
		tag.Name = name
	}
	if in.Description != "" {
		tag.Description = in.Description
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag detaches the tag from every article, then deletes the tag record.
// The detach runs first so a failure aborts with the graph still consistent;
// only a failure after the detach surfaces as PARTIAL_FAILURE.
func (s *TagService) DeleteTag(ctx context.Context, identity authz.Identity, id uint) error {
	if _, err := s.tagRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := authz.Authorize(identity, authz.ActionTagDelete, 0); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return models.NewInternalError(err)
	}

	if err := s.articleRepo.DetachTagFromAll(ctx, id); err != nil {
		return err
	}
	if err := s.tagRepo.Delete(context.WithoutCancel(ctx), id); err != nil {
		observability.CascadePartialFailures.WithLabelValues("tag_delete").Inc()
		middleware.Logger.ErrorContext(ctx, "tag detached everywhere but record deletion failed",
			"tag_id", id, "error", err)
		return models.NewPartialFailureError("delete tag record", err)
	}

	middleware.Logger.InfoContext(ctx, "tag deleted", "tag_id", id)
	return nil
}

// ArticlesForTag lists the articles carrying the tag, resolved through the
// join table. An unknown tag is a 404 here, unlike the list filter which
// just returns empty.
func (s *TagService) ArticlesForTag(ctx context.Context, tagID uint, limit, offset int) ([]models.Article, error) {
	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		return nil, err
	}
	return s.articleRepo.List(ctx, repository.ArticleFilter{TagID: tagID, Limit: limit, Offset: offset})
}
