package repositories

import (
	"errors"

	"memberhub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrContentNotFound = errors.New("content item not found")
)

// ContentItem is satisfied by the marketing content models.
type ContentItem interface {
	models.Leader | models.GalleryImage | models.Video
}

// ContentRepository serves one content table. Rows are ordered by
// display_order, then created_at.
type ContentRepository[T ContentItem] interface {
	FindVisible(db *gorm.DB) ([]T, error)
	FindAll(db *gorm.DB) ([]T, error)
	FindByID(db *gorm.DB, id string) (*T, error)
	Create(db *gorm.DB, item *T) error
	Update(db *gorm.DB, item *T) error
	Delete(db *gorm.DB, id string) error
	// Reorder assigns display_order by position in ids.
	Reorder(db *gorm.DB, ids []string) error
	NextDisplayOrder(db *gorm.DB) (int, error)
}

type contentRepository[T ContentItem] struct{}

func NewContentRepository[T ContentItem]() ContentRepository[T] {
	return &contentRepository[T]{}
}

func (r *contentRepository[T]) FindVisible(db *gorm.DB) ([]T, error) {
	var items []T
	err := db.Where("is_visible = ?", true).
		Order("display_order ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *contentRepository[T]) FindAll(db *gorm.DB) ([]T, error) {
	var items []T
	err := db.Order("display_order ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (r *contentRepository[T]) FindByID(db *gorm.DB, id string) (*T, error) {
	var item T
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts the row as given. Callers default is_visible to true.
func (r *contentRepository[T]) Create(db *gorm.DB, item *T) error {
	return db.Create(item).Error
}

func (r *contentRepository[T]) Update(db *gorm.DB, item *T) error {
	result := db.Model(item).Select("*").Omit("id", "created_at").Updates(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (r *contentRepository[T]) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (r *contentRepository[T]) Reorder(db *gorm.DB, ids []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(new(T)).Where("id = ?", id).Update("display_order", i)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrContentNotFound
			}
		}
		return nil
	})
}

func (r *contentRepository[T]) NextDisplayOrder(db *gorm.DB) (int, error) {
	var max int
	if err := db.Model(new(T)).Select("COALESCE(MAX(display_order), -1)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}
