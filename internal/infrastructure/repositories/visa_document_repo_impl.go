package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/infrastructure/models"
)

// VisaDocumentRepository implements visa document data operations
type VisaDocumentRepository struct {
	db *gorm.DB
}

// NewVisaDocumentRepository creates a new visa document repository
func NewVisaDocumentRepository(db *gorm.DB) *VisaDocumentRepository {
	return &VisaDocumentRepository{db: db}
}

// ListByEmployee returns the employee's documents
func (r *VisaDocumentRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*entities.VisaDocument, error) {
	var ms []models.VisaDocument
	if err := GetDB(ctx, r.db).Where("employee_id = ?", employeeID).Find(&ms).Error; err != nil {
		return nil, err
	}

	docs := make([]*entities.VisaDocument, 0, len(ms))
	for i := range ms {
		docs = append(docs, r.toEntity(&ms[i]))
	}
	return docs, nil
}

// GetByEmployeeAndType returns one step record
func (r *VisaDocumentRepository) GetByEmployeeAndType(ctx context.Context, employeeID uuid.UUID, docType entities.DocumentType) (*entities.VisaDocument, error) {
	var m models.VisaDocument
	err := GetDB(ctx, r.db).
		Where("employee_id = ? AND type = ?", employeeID, string(docType)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Upsert inserts a new step record or performs a version-checked update
func (r *VisaDocumentRepository) Upsert(ctx context.Context, doc *entities.VisaDocument) error {
	now := time.Now()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
		doc.Version = 1
		doc.CreatedAt = now
		doc.UpdatedAt = now
		m := r.toModel(doc)
		if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
			doc.ID = uuid.Nil
			doc.Version = 0
			if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		return nil
	}

	result := GetDB(ctx, r.db).
		Model(&models.VisaDocument{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version).
		Updates(map[string]interface{}{
			"file_ref":    doc.FileRef.Ptr(),
			"status":      string(doc.Status),
			"feedback":    doc.Feedback.Ptr(),
			"uploaded_at": doc.UploadedAt,
			"reviewed_by": doc.ReviewedBy.Ptr(),
			"reviewed_at": doc.ReviewedAt.Ptr(),
			"version":     doc.Version + 1,
			"updated_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	doc.Version++
	doc.UpdatedAt = now
	return nil
}

// ListEmployeesWithDocuments returns every employee with at least one document
func (r *VisaDocumentRepository) ListEmployeesWithDocuments(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).
		Model(&models.VisaDocument{}).
		Distinct("employee_id").
		Pluck("employee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *VisaDocumentRepository) toModel(d *entities.VisaDocument) *models.VisaDocument {
	return &models.VisaDocument{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		Type:       string(d.Type),
		FileRef:    d.FileRef.Ptr(),
		Status:     string(d.Status),
		Feedback:   d.Feedback.Ptr(),
		UploadedAt: d.UploadedAt,
		ReviewedBy: d.ReviewedBy.Ptr(),
		ReviewedAt: d.ReviewedAt.Ptr(),
		Version:    d.Version,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (r *VisaDocumentRepository) toEntity(m *models.VisaDocument) *entities.VisaDocument {
	return &entities.VisaDocument{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Type:       entities.DocumentType(m.Type),
		FileRef:    null.StringFromPtr(m.FileRef),
		Status:     entities.StepStatus(m.Status),
		Feedback:   null.StringFromPtr(m.Feedback),
		UploadedAt: m.UploadedAt,
		ReviewedBy: null.StringFromPtr(m.ReviewedBy),
		ReviewedAt: null.TimeFromPtr(m.ReviewedAt),
		Version:    m.Version,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
