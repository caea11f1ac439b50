package models

import (
	"time"

	"github.com/google/uuid"
)

// VisaDocument holds one row per (employee, type); reuploads update it in place.
type VisaDocument struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_visa_document_employee_type"`
	Type       string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_visa_document_employee_type"`
	FileRef    *string   `gorm:"type:text"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`
	Feedback   *string   `gorm:"type:text"`
	UploadedAt time.Time `gorm:"not null"`
	ReviewedBy *string   `gorm:"type:varchar(36)"`
	ReviewedAt *time.Time
	Version    int `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (VisaDocument) TableName() string {
	return "visa_documents"
}
