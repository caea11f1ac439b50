package repositories

import (
	"context"

	"github.com/google/uuid"
	"visa-onboarding.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.User, error)
}

// InvitationRepository defines registration invitation operations
type InvitationRepository interface {
	Create(ctx context.Context, invitation *entities.RegistrationInvitation) error
	GetByToken(ctx context.Context, token string) (*entities.RegistrationInvitation, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*entities.RegistrationInvitation, int64, error)
	GetExpiredUnused(ctx context.Context, limit int) ([]*entities.RegistrationInvitation, error)
	ExpireInvitations(ctx context.Context, ids []uuid.UUID) error
}
