package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is a public enquiry awaiting admin triage.
type Contact struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name              string    `gorm:"column:name;not null"`
	Email             string    `gorm:"column:email;not null"`
	Subject           string    `gorm:"column:subject;not null;size:100"`
	Content           string    `gorm:"column:content;not null"`
	IsContactedByTeam bool      `gorm:"column:is_contacted_by_team;not null;default:false"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Contact) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
