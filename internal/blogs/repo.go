package blogs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
)

// Repository handles persistence for blog posts.
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

// List returns one page of posts newest first plus the unpaged total.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]models.Blog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Blog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Blog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// FindByID loads a post by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	var post models.Blog
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// FindBySlug loads a post by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var post models.Blog
	if err := r.db.WithContext(ctx).First(&post, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Create inserts a post row.
func (r *Repository) Create(ctx context.Context, post *models.Blog) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Save persists the full post row.
func (r *Repository) Save(ctx context.Context, post *models.Blog) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// Delete removes a post row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id).Error
}
