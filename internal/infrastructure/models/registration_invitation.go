package models

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationInvitation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Status    string    `gorm:"type:varchar(20);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}
