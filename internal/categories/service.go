package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
)

// CreateCategoryRequest is the admin payload for a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=60"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryRequest renames or redescribes an existing category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=60"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// CreateSubCategoryRequest adds a child under an existing category.
type CreateSubCategoryRequest struct {
	Name       string    `json:"name" validate:"required,min=2,max=60"`
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
}

// Service manages the category tree. Deletes are blocked while products or
// children still reference the node.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]models.SubCategory, error)
	CreateSubCategory(ctx context.Context, req CreateSubCategoryRequest) (*models.SubCategory, error)
	DeleteSubCategory(ctx context.Context, id uuid.UUID) error
}

// ServiceParams packages the dependencies for the category service.
type ServiceParams struct {
	DB   *db.Client
	Repo *Repository
}

type service struct {
	db   *db.Client
	repo *Repository
}

// NewService constructs a category service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "category repository required")
	}
	return &service{db: params.DB, repo: params.Repo}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	name := NormalizeName(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	if _, err := s.repo.FindCategoryByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}

	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if req.Name != nil {
		name := NormalizeName(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
		}
		if name != category.Name {
			if _, err := s.repo.FindCategoryByName(ctx, name); err == nil {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
			}
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

// DeleteCategory refuses while products or subcategories still reference it.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	productCount, err := s.repo.CountProductsByCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if productCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
	}

	subCount, err := s.repo.CountSubCategories(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count subcategories")
	}
	if subCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has subcategories")
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) ListSubCategories(ctx context.Context, categoryID *uuid.UUID) ([]models.SubCategory, error) {
	subs, err := s.repo.ListSubCategories(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subcategories")
	}
	return subs, nil
}

func (s *service) CreateSubCategory(ctx context.Context, req CreateSubCategoryRequest) (*models.SubCategory, error) {
	name := NormalizeName(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategory name is required")
	}

	if _, err := s.repo.FindCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if _, err := s.repo.FindSubCategoryByName(ctx, req.CategoryID, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "subcategory already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subcategory name")
	}

	sub := &models.SubCategory{
		Name:       name,
		CategoryID: req.CategoryID,
	}
	if err := s.repo.CreateSubCategory(ctx, sub); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "subcategory already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subcategory")
	}
	return sub, nil
}

// DeleteSubCategory refuses while products still reference it.
func (s *service) DeleteSubCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindSubCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subcategory")
	}

	productCount, err := s.repo.CountProductsBySubCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count subcategory products")
	}
	if productCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "subcategory still has products")
	}

	if err := s.repo.DeleteSubCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete subcategory")
	}
	return nil
}
