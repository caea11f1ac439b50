package models

import (
	"time"

	"github.com/google/uuid"
)

type EmergencyContact struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MiddleName   string `json:"middleName,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Relationship string `json:"relationship"`
}

type OnboardingApplication struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Status                 string    `gorm:"type:varchar(20);not null;index"`
	Feedback               *string   `gorm:"type:text"`
	FirstName              string    `gorm:"type:varchar(100);not null"`
	LastName               string    `gorm:"type:varchar(100);not null"`
	MiddleName             *string   `gorm:"type:varchar(100)"`
	PreferredName          *string   `gorm:"type:varchar(100)"`
	Phone                  string    `gorm:"type:varchar(30);not null"`
	WorkPhone              *string   `gorm:"type:varchar(30)"`
	AddressBuilding        string    `gorm:"type:varchar(100)"`
	AddressStreet          string    `gorm:"type:varchar(255)"`
	AddressCity            string    `gorm:"type:varchar(100)"`
	AddressState           string    `gorm:"type:varchar(50)"`
	AddressZip             string    `gorm:"type:varchar(20)"`
	DateOfBirth            time.Time
	Gender                 string  `gorm:"type:varchar(20)"`
	Citizenship            string  `gorm:"type:varchar(20);not null"`
	WorkAuthorization      *string `gorm:"type:varchar(30)"`
	WorkAuthorizationTitle *string `gorm:"type:varchar(100)"`
	AuthorizationStart     *time.Time
	AuthorizationEnd       *time.Time
	ProfilePictureRef      *string            `gorm:"type:text"`
	DriverLicenseRef       *string            `gorm:"type:text"`
	WorkAuthorizationRef   *string            `gorm:"type:text"`
	EmergencyContacts      []EmergencyContact `gorm:"type:text;serializer:json"`
	SubmittedAt            *time.Time
	ReviewedAt             *time.Time
	ReviewedBy             *string `gorm:"type:varchar(36)"`
	Version                int     `gorm:"not null;default:0"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
