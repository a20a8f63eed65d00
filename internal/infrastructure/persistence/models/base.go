package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel holds the columns shared by all persisted aggregates
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}
