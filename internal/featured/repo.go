package featured

import (
	"context"

	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
)

// Repository handles persistence for homepage featured pins.
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

// ListActive returns the active pins in display order with products attached.
// The cap holds even if extra rows were seeded outside of Set.
func (r *Repository) ListActive(ctx context.Context) ([]models.FeaturedProduct, error) {
	var pins []models.FeaturedProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("is_active = ?", true).
		Order("position ASC").
		Limit(MaxFeatured).
		Find(&pins).Error
	return pins, err
}

// DeleteAll clears every pin. The active set is replaced wholesale.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.FeaturedProduct{}).Error
}

// Create inserts one pin row.
func (r *Repository) Create(ctx context.Context, pin *models.FeaturedProduct) error {
	return r.db.WithContext(ctx).Create(pin).Error
}
