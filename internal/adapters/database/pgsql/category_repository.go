package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/ajudi46/expense-tracker-server/internal/core/domain"
	portsrepo "github.com/ajudi46/expense-tracker-server/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new repository for category data.
func NewCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &categoryRepository{pool: pool}
}

var _ portsrepo.CategoryRepositoryFacade = (*categoryRepository)(nil)

func (r *categoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	query := `
		INSERT INTO categories (category_id, name, icon, kind)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.pool.Exec(ctx, query,
		category.CategoryID,
		category.Name,
		category.Icon,
		category.Kind,
	)
	if err != nil {
		if mapped := mapWriteError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("failed to save category %d: %w", category.CategoryID, err)
	}
	return nil
}

func (r *categoryRepository) FindCategoryByID(ctx context.Context, categoryID int64) (*domain.Category, error) {
	query := `
		SELECT category_id, name, icon, kind
		FROM categories
		WHERE category_id = $1;
	`
	var cat domain.Category
	err := r.pool.QueryRow(ctx, query, categoryID).Scan(
		&cat.CategoryID,
		&cat.Name,
		&cat.Icon,
		&cat.Kind,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID %d: %w", categoryID, err)
	}
	return &cat, nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT category_id, name, icon, kind
		FROM categories
		ORDER BY name;
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.CategoryID, &cat.Name, &cat.Icon, &cat.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, icon = $3, kind = $4
		WHERE category_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		category.CategoryID,
		category.Name,
		category.Icon,
		category.Kind,
	)
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", category.CategoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) DeleteCategory(ctx context.Context, categoryID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", categoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
