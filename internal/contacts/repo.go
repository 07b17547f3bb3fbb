package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
)

// Repository handles persistence for contact enquiries.
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

// List returns one page newest first, optionally filtered by triage state.
func (r *Repository) List(ctx context.Context, contacted *bool, offset, limit int) ([]models.Contact, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Contact{})
	if contacted != nil {
		query = query.Where("is_contacted_by_team = ?", *contacted)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enquiries []models.Contact
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&enquiries).Error
	if err != nil {
		return nil, 0, err
	}
	return enquiries, total, nil
}

// FindByID loads an enquiry by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var enquiry models.Contact
	if err := r.db.WithContext(ctx).First(&enquiry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &enquiry, nil
}

// Create inserts an enquiry row.
func (r *Repository) Create(ctx context.Context, enquiry *models.Contact) error {
	return r.db.WithContext(ctx).Create(enquiry).Error
}

// SetContacted flips the triage flag.
func (r *Repository) SetContacted(ctx context.Context, id uuid.UUID, contacted bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", id).
		Update("is_contacted_by_team", contacted).Error
}

// Delete removes an enquiry row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id).Error
}
