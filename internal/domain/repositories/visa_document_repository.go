package repositories

import (
	"context"

	"github.com/google/uuid"
	"visa-onboarding.backend/internal/domain/entities"
)

// VisaDocumentRepository defines visa document data operations.
// Upsert inserts a document without an ID and otherwise updates the stored
// row only if its version still equals doc.Version, returning ErrConflict
// when it does not. On success doc.Version holds the new version.
type VisaDocumentRepository interface {
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]*entities.VisaDocument, error)
	GetByEmployeeAndType(ctx context.Context, employeeID uuid.UUID, docType entities.DocumentType) (*entities.VisaDocument, error)
	Upsert(ctx context.Context, doc *entities.VisaDocument) error
	ListEmployeesWithDocuments(ctx context.Context) ([]uuid.UUID, error)
}
