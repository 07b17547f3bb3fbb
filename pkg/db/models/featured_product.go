package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeaturedProduct pins a product to the homepage. Position defines the display
// sequence; the whole active set is replaced wholesale on each admin save.
type FeaturedProduct struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	Position  int       `gorm:"column:position;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (f *FeaturedProduct) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
