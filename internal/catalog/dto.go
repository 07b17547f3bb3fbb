package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
)

// VariantDTO is a color-specific image set with serveable URLs.
type VariantDTO struct {
	Color  string   `json:"color"`
	Images []string `json:"images"`
}

// ProductDTO is the public catalog projection. Image paths are resolved
// against the storage endpoint; category names are denormalized for display.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	VallyID         string          `json:"vally_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	CategoryID      uuid.UUID       `json:"category_id"`
	CategoryName    string          `json:"category_name,omitempty"`
	SubCategoryID   *uuid.UUID      `json:"sub_category_id,omitempty"`
	SubCategoryName string          `json:"sub_category_name,omitempty"`
	Brand           string          `json:"brand"`
	Sizes           []string        `json:"sizes"`
	Images          []string        `json:"images"`
	Variants        []VariantDTO    `json:"variants"`
	Stock           int             `json:"stock"`
	Material        string          `json:"material,omitempty"`
	FabricSize      string          `json:"fabric_size,omitempty"`
	TypeOfProduct   string          `json:"type_of_product,omitempty"`
	IsPublished     bool            `json:"is_published"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ListResult is one catalog page plus the pagination block.
type ListResult struct {
	Items    []ProductDTO        `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// NewProductDTO projects the model, resolving stored relative paths to URLs.
func NewProductDTO(product *models.Product, resolveImage func(string) string) *ProductDTO {
	if product == nil {
		return nil
	}
	if resolveImage == nil {
		resolveImage = func(path string) string { return path }
	}

	dto := &ProductDTO{
		ID:            product.ID,
		VallyID:       product.VallyID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		CategoryID:    product.CategoryID,
		SubCategoryID: product.SubCategoryID,
		Brand:         product.Brand,
		Sizes:         product.Sizes,
		Images:        resolveAll(product.Images, resolveImage),
		Variants:      make([]VariantDTO, 0, len(product.Variants)),
		Stock:         product.Stock,
		Material:      product.Material,
		FabricSize:    product.FabricSize,
		TypeOfProduct: product.TypeOfProduct,
		IsPublished:   product.IsPublished,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if product.Category != nil {
		dto.CategoryName = product.Category.Name
	}
	if product.SubCategory != nil {
		dto.SubCategoryName = product.SubCategory.Name
	}
	for _, variant := range product.Variants {
		dto.Variants = append(dto.Variants, VariantDTO{
			Color:  variant.Color,
			Images: resolveAll(variant.Images, resolveImage),
		})
	}
	return dto
}

func resolveAll(paths []string, resolve func(string) string) []string {
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved = append(resolved, resolve(path))
	}
	return resolved
}
