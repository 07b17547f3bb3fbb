package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blog is an admin-authored post with a single cover image stored remotely.
// ImageFileID is the storage provider handle needed to delete the object.
type Blog struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Excerpt     string    `gorm:"column:excerpt;not null"`
	Content     string    `gorm:"column:content;not null"`
	Author      string    `gorm:"column:author;not null;default:'Vally'"`
	Category    string    `gorm:"column:category;not null;default:'Fashion'"`
	ImageURL    string    `gorm:"column:image_url;not null"`
	ImageFileID string    `gorm:"column:image_file_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Blog) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
