package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"memberhub_backend/internal/cache"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ContentService manages one kind of marketing content. Public lists are
// cached per kind and dropped on every write.
type ContentService[T repositories.ContentItem] interface {
	ListPublic(ctx context.Context, db *gorm.DB) ([]T, error)
	ListAll(db *gorm.DB) ([]T, error)
	Get(db *gorm.DB, id string) (*T, error)
	// Create appends the item when displayOrder is nil.
	Create(ctx context.Context, db *gorm.DB, item *T, displayOrder *int) error
	// Update loads the item, lets apply mutate it and saves the result.
	Update(ctx context.Context, db *gorm.DB, id string, apply func(*T)) (*T, error)
	Delete(ctx context.Context, db *gorm.DB, id string) error
	Reorder(ctx context.Context, db *gorm.DB, ids []string) error
}

type contentService[T repositories.ContentItem] struct {
	kind     string
	repo     repositories.ContentRepository[T]
	cache    cache.Cache
	cacheTTL time.Duration
	// setOrder writes display_order into a new item.
	setOrder func(*T, int)
	// onDelete runs after a row is removed, e.g. to drop an uploaded file.
	onDelete func(ctx context.Context, item *T)
}

func newContentService[T repositories.ContentItem](kind string, repo repositories.ContentRepository[T], c cache.Cache, ttl time.Duration, setOrder func(*T, int)) *contentService[T] {
	if c == nil {
		c = cache.Noop{}
	}
	return &contentService[T]{
		kind:     kind,
		repo:     repo,
		cache:    c,
		cacheTTL: ttl,
		setOrder: setOrder,
	}
}

func (s *contentService[T]) namespace() string {
	return "content:" + s.kind
}

func (s *contentService[T]) notFound(err error) error {
	if errors.Is(err, repositories.ErrContentNotFound) {
		return apperrors.Wrap(err, apperrors.CodeNotFound, s.kind, "Content item not found", http.StatusNotFound)
	}
	return apperrors.InternalError(err)
}

func (s *contentService[T]) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, s.namespace()); err != nil {
		logger.CtxWithError(ctx, "Failed to invalidate content cache", err, "kind", s.kind)
	}
}

func (s *contentService[T]) ListPublic(ctx context.Context, db *gorm.DB) ([]T, error) {
	key := s.cache.Key(ctx, s.namespace(), "visible")

	var cached []T
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		return cached, nil
	}

	items, err := s.repo.FindVisible(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if items == nil {
		items = []T{}
	}

	if err := s.cache.SetJSON(ctx, key, items, s.cacheTTL); err != nil {
		logger.CtxWithError(ctx, "Failed to cache content list", err, "kind", s.kind)
	}
	return items, nil
}

func (s *contentService[T]) ListAll(db *gorm.DB) ([]T, error) {
	items, err := s.repo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *contentService[T]) Get(db *gorm.DB, id string) (*T, error) {
	item, err := s.repo.FindByID(db, id)
	if err != nil {
		return nil, s.notFound(err)
	}
	return item, nil
}

func (s *contentService[T]) Create(ctx context.Context, db *gorm.DB, item *T, displayOrder *int) error {
	order := 0
	if displayOrder != nil {
		order = *displayOrder
	} else {
		next, err := s.repo.NextDisplayOrder(db)
		if err != nil {
			return apperrors.InternalError(err)
		}
		order = next
	}
	s.setOrder(item, order)

	if err := s.repo.Create(db, item); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Content created", "kind", s.kind)
	s.invalidate(ctx)
	return nil
}

func (s *contentService[T]) Update(ctx context.Context, db *gorm.DB, id string, apply func(*T)) (*T, error) {
	item, err := s.repo.FindByID(db, id)
	if err != nil {
		return nil, s.notFound(err)
	}

	apply(item)
	if err := s.repo.Update(db, item); err != nil {
		return nil, s.notFound(err)
	}

	s.invalidate(ctx)
	return item, nil
}

func (s *contentService[T]) Delete(ctx context.Context, db *gorm.DB, id string) error {
	item, err := s.repo.FindByID(db, id)
	if err != nil {
		return s.notFound(err)
	}
	if err := s.repo.Delete(db, id); err != nil {
		return s.notFound(err)
	}
	if s.onDelete != nil {
		s.onDelete(ctx, item)
	}

	logger.CtxInfo(ctx, "Content deleted", "kind", s.kind, "id", id)
	s.invalidate(ctx)
	return nil
}

func (s *contentService[T]) Reorder(ctx context.Context, db *gorm.DB, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return apperrors.ValidationError(map[string]string{"ids": "Duplicate id " + id})
		}
		seen[id] = struct{}{}
	}

	if err := s.repo.Reorder(db, ids); err != nil {
		return s.notFound(err)
	}
	s.invalidate(ctx)
	return nil
}
