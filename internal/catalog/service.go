package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
)

const requiredImageCount = 4

// VariantRequest is one color variant in a product write payload.
type VariantRequest struct {
	Color  string   `json:"color" validate:"required"`
	Images []string `json:"images" validate:"required"`
}

// CreateProductRequest is the admin payload for a new listing.
type CreateProductRequest struct {
	VallyID       string           `json:"vally_id" validate:"required,min=3,max=40"`
	Name          string           `json:"name" validate:"required,min=2,max=120"`
	Description   string           `json:"description" validate:"max=5000"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	CategoryID    uuid.UUID        `json:"category_id" validate:"required"`
	SubCategoryID *uuid.UUID       `json:"sub_category_id"`
	Brand         string           `json:"brand" validate:"required"`
	Sizes         []string         `json:"sizes" validate:"required,min=1"`
	Images        []string         `json:"images" validate:"required"`
	Variants      []VariantRequest `json:"variants" validate:"required,min=1,dive"`
	Stock         int              `json:"stock" validate:"gte=0"`
	Material      string           `json:"material" validate:"required"`
	FabricSize    string           `json:"fabric_size"`
	TypeOfProduct string           `json:"type_of_product"`
	IsPublished   bool             `json:"is_published"`
}

// UpdateProductRequest mirrors create; the whole document is replaced.
type UpdateProductRequest = CreateProductRequest

type categoryChecker interface {
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindSubCategoryByID(ctx context.Context, id uuid.UUID) (*models.SubCategory, error)
}

type imageResolver interface {
	URL(path string) string
	RelativePath(value string) string
}

// Service owns the product catalog. Writes are admin-only and enforce the
// four-image rule on the product and on every color variant.
type Service interface {
	List(ctx context.Context, filter ListFilter, page pagination.Params) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams packages the dependencies for the catalog service.
type ServiceParams struct {
	DB         *db.Client
	Repo       *Repository
	Categories categoryChecker
	Images     imageResolver
}

type service struct {
	db         *db.Client
	repo       *Repository
	categories categoryChecker
	images     imageResolver
}

// NewService constructs a catalog service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	if params.Categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "category repository required")
	}
	return &service{
		db:         params.DB,
		repo:       params.Repo,
		categories: params.Categories,
		images:     params.Images,
	}, nil
}

func (s *service) resolveImage(path string) string {
	if s.images == nil {
		return path
	}
	return s.images.URL(path)
}

func (s *service) relativePath(value string) string {
	if s.images == nil {
		return value
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return value
	}
	return s.images.RelativePath(value)
}

// List never fails on filter input; unusable filters arrive already dropped.
func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	products, total, err := s.repo.List(ctx, filter, page.Offset(), page.PerPage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductDTO, 0, len(products))
	for i := range products {
		items = append(items, *NewProductDTO(&products[i], s.resolveImage))
	}
	return &ListResult{
		Items:    items,
		PageInfo: pagination.NewPageInfo(page, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product, s.resolveImage), nil
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if err := s.validateWrite(ctx, req); err != nil {
		return nil, err
	}

	vallyID := strings.ToUpper(strings.TrimSpace(req.VallyID))
	if _, err := s.repo.FindByVallyID(ctx, vallyID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product code already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product code")
	}

	product := s.buildModel(req)
	product.VallyID = vallyID
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.Get(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.validateWrite(ctx, req); err != nil {
		return nil, err
	}

	vallyID := strings.ToUpper(strings.TrimSpace(req.VallyID))
	if vallyID != existing.VallyID {
		if _, err := s.repo.FindByVallyID(ctx, vallyID); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product code already in use")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product code")
		}
	}

	updated := s.buildModel(req)
	updated.ID = existing.ID
	updated.VallyID = vallyID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.Get(ctx, updated.ID)
}

// Delete is a hard delete. Cart snapshots are intentionally left alone.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) validateWrite(ctx context.Context, req CreateProductRequest) error {
	if len(req.Images) != requiredImageCount {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("product requires exactly %d images", requiredImageCount))
	}
	if len(req.Variants) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one color variant is required")
	}
	for _, variant := range req.Variants {
		if strings.TrimSpace(variant.Color) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant color is required")
		}
		if len(variant.Images) != requiredImageCount {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("variant %q requires exactly %d images", variant.Color, requiredImageCount))
		}
	}
	if len(req.Sizes) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one size is required")
	}
	if strings.TrimSpace(req.Material) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "material is required")
	}
	if !req.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}

	if _, err := s.categories.FindCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if req.SubCategoryID != nil {
		sub, err := s.categories.FindSubCategoryByID(ctx, *req.SubCategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subcategory")
		}
		if sub.CategoryID != req.CategoryID {
			return pkgerrors.New(pkgerrors.CodeValidation, "subcategory belongs to a different category")
		}
	}
	return nil
}

// buildModel maps the payload onto a row, normalizing absolute image URLs to
// storage-relative paths.
func (s *service) buildModel(req CreateProductRequest) *models.Product {
	variants := make([]models.ProductVariant, 0, len(req.Variants))
	for _, variant := range req.Variants {
		variants = append(variants, models.ProductVariant{
			Color:  strings.TrimSpace(variant.Color),
			Images: s.normalizeAll(variant.Images),
		})
	}
	return &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Brand:         strings.TrimSpace(req.Brand),
		Sizes:         req.Sizes,
		Images:        s.normalizeAll(req.Images),
		Variants:      variants,
		Stock:         req.Stock,
		Material:      strings.TrimSpace(req.Material),
		FabricSize:    strings.TrimSpace(req.FabricSize),
		TypeOfProduct: strings.TrimSpace(req.TypeOfProduct),
		IsPublished:   req.IsPublished,
	}
}

func (s *service) normalizeAll(values []string) []string {
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		normalized = append(normalized, s.relativePath(strings.TrimSpace(value)))
	}
	return normalized
}
