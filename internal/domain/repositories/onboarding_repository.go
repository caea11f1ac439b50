package repositories

import (
	"context"

	"github.com/google/uuid"
	"visa-onboarding.backend/internal/domain/entities"
)

// OnboardingRepository defines onboarding application data operations
type OnboardingRepository interface {
	GetByEmployee(ctx context.Context, employeeID uuid.UUID) (*entities.OnboardingApplication, error)
	// Status returns OnboardingNeverSubmitted when the employee has no application.
	Status(ctx context.Context, employeeID uuid.UUID) (entities.OnboardingStatus, error)
	// Save inserts or performs a version-checked update, like VisaDocumentRepository.Upsert.
	Save(ctx context.Context, app *entities.OnboardingApplication) error
	ListByStatus(ctx context.Context, status entities.OnboardingStatus, limit, offset int) ([]*entities.OnboardingApplication, int64, error)
	StatusesByEmployees(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID]entities.OnboardingStatus, error)
}
