package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductVariant is a color-specific image set, distinct from size.
type ProductVariant struct {
	Color  string   `json:"color"`
	Images []string `json:"images"`
}

// Product is the canonical catalog listing. Image paths are persisted relative
// to the storage endpoint; the catalog service prefixes the base URL on reads.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	VallyID       string           `gorm:"column:vally_id;not null;uniqueIndex"`
	Name          string           `gorm:"column:name;not null"`
	Description   string           `gorm:"column:description"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CategoryID    uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	SubCategoryID *uuid.UUID       `gorm:"column:sub_category_id;type:uuid"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	SubCategory   *SubCategory     `gorm:"foreignKey:SubCategoryID"`
	Brand         string           `gorm:"column:brand;not null"`
	Sizes         []string         `gorm:"column:sizes;type:jsonb;serializer:json"`
	Images        []string         `gorm:"column:images;type:jsonb;serializer:json"`
	Variants      []ProductVariant `gorm:"column:variants;type:jsonb;serializer:json"`
	Stock         int              `gorm:"column:stock;not null;default:0"`
	Material      string           `gorm:"column:material"`
	FabricSize    string           `gorm:"column:fabric_size"`
	TypeOfProduct string           `gorm:"column:type_of_product"`
	IsPublished   bool             `gorm:"column:is_published;not null;default:false"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
