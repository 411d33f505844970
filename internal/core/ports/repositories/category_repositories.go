package repositories

import (
	"context"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
)

// CategoryReader defines read operations for category data.
type CategoryReader interface {
	// FindCategoryByID retrieves a category by its identifier.
	FindCategoryByID(ctx context.Context, categoryID int64) (*domain.Category, error)

	// ListCategories retrieves every category, ordered by name.
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryWriter defines write operations for category data.
type CategoryWriter interface {
	// SaveCategory persists a new category. Returns apperrors.ErrDuplicate on
	// identifier collision.
	SaveCategory(ctx context.Context, category domain.Category) error

	// UpdateCategory overwrites an existing category row.
	UpdateCategory(ctx context.Context, category domain.Category) error

	// DeleteCategory removes a category by identifier.
	DeleteCategory(ctx context.Context, categoryID int64) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces.
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
