package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
	"github.com/vallyhouse/vally-backend/pkg/enums"
)

// ListFilter carries catalog listing filters. Nil bounds mean unbounded;
// invalid client input is dropped upstream, never rejected.
type ListFilter struct {
	Query              string
	MinPrice           *decimal.Decimal
	MaxPrice           *decimal.Decimal
	CategoryIDs        []uuid.UUID
	SubCategoryID      *uuid.UUID
	Sort               enums.ProductSort
	IncludeUnpublished bool
}

// Repository handles persistence for catalog products.
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

// List applies the filter and returns one page plus the unpaged total.
func (r *Repository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if !filter.IncludeUnpublished {
		query = query.Where("is_published = ?", true)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(vally_id) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.SubCategoryID != nil {
		query = query.Where("sub_category_id = ?", *filter.SubCategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case enums.ProductSortPriceAsc:
		query = query.Order("price ASC")
	case enums.ProductSortPriceDesc:
		query = query.Order("price DESC")
	case enums.ProductSortNewest:
		query = query.Order("created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []models.Product
	err := query.
		Preload("Category").
		Preload("SubCategory").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindByID loads one product with its category tree.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("SubCategory").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByVallyID loads one product by its public catalog code.
func (r *Repository) FindByVallyID(ctx context.Context, vallyID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "vally_id = ?", vallyID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindManyByIDs loads products for the given ids, unordered.
func (r *Repository) FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Find(&products, "id IN ?", ids).Error
	return products, err
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists the full product row.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product and any homepage pin referencing it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.FeaturedProduct{}, "product_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}
