package categories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
)

// Repository handles persistence for categories and subcategories.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// FindCategoryByID loads a category by primary key.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindCategoryByName looks up a category by its normalized name.
func (r *Repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "name = ?", NormalizeName(name)).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory persists name and description changes.
func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"name":        category.Name,
			"description": category.Description,
		}).Error
}

// DeleteCategory removes a category row.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

// ListSubCategories returns subcategories, optionally scoped to one parent.
func (r *Repository) ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]models.SubCategory, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var subs []models.SubCategory
	err := query.Find(&subs).Error
	return subs, err
}

// FindSubCategoryByID loads a subcategory by primary key.
func (r *Repository) FindSubCategoryByID(ctx context.Context, id uuid.UUID) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindSubCategoryByName looks up a subcategory within one parent.
func (r *Repository) FindSubCategoryByName(ctx context.Context, categoryID uuid.UUID, name string) (*models.SubCategory, error) {
	var sub models.SubCategory
	err := r.db.WithContext(ctx).
		First(&sub, "category_id = ? AND name = ?", categoryID, NormalizeName(name)).
		Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubCategory inserts a subcategory row.
func (r *Repository) CreateSubCategory(ctx context.Context, sub *models.SubCategory) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// DeleteSubCategory removes a subcategory row.
func (r *Repository) DeleteSubCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SubCategory{}, "id = ?", id).Error
}

// CountProductsByCategory counts catalog rows referencing the category.
func (r *Repository) CountProductsByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CountProductsBySubCategory counts catalog rows referencing the subcategory.
func (r *Repository) CountProductsBySubCategory(ctx context.Context, subCategoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("sub_category_id = ?", subCategoryID).
		Count(&count).Error
	return count, err
}

// CountSubCategories counts children of the category.
func (r *Repository) CountSubCategories(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubCategory{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// NormalizeName lowercases and trims so uniqueness is case-insensitive.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
