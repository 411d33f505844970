package services

import (
	"context"
	"fmt"

	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	portssvc "github.com/ajudi46/expense-tracker-server/internal/core/ports/services"
	"github.com/ajudi46/expense-tracker-server/internal/dto"
	"github.com/ajudi46/expense-tracker-server/internal/utils"
)

type categoryService struct {
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*domain.Category, error) {
	category := domain.Category{
		CategoryID: utils.NewNumericID(),
		Name:       domain.CategoryName(req.Name),
		Icon:       req.Icon,
		Kind:       req.Kind,
	}
	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return &category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, categoryID int64) (*domain.Category, error) {
	return s.categoryRepo.FindCategoryByID(ctx, categoryID)
}

func (s *categoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.ListCategories(ctx)
}

// UpdateCategory edits display metadata. Renaming a category does not retag
// transactions carrying the old name; budgets and sums match by exact name.
func (s *categoryService) UpdateCategory(ctx context.Context, categoryID int64, req dto.UpdateCategoryRequest) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = domain.CategoryName(*req.Name)
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes the category row only. Transactions referencing the
// name stay valid; they reference categories by name, not by identifier.
func (s *categoryService) DeleteCategory(ctx context.Context, categoryID int64) error {
	if _, err := s.categoryRepo.FindCategoryByID(ctx, categoryID); err != nil {
		return err
	}
	return s.categoryRepo.DeleteCategory(ctx, categoryID)
}
