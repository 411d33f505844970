package dto

import (
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a category.
type CreateCategoryRequest struct {
	Name string              `json:"name" binding:"required,notblank"`
	Icon string              `json:"icon"`
	Kind domain.CategoryKind `json:"kind" binding:"required,oneof=EXPENSE INCOME"`
}

// UpdateCategoryRequest defines the editable category fields.
type UpdateCategoryRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID int64               `json:"categoryID"`
	Name       string              `json:"name"`
	Icon       string              `json:"icon"`
	Kind       domain.CategoryKind `json:"kind"`
}

// ToCategoryResponse converts a domain.Category to its response DTO.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		Name:       string(c.Name),
		Icon:       c.Icon,
		Kind:       c.Kind,
	}
}
