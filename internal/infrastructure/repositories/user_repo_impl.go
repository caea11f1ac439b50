package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	m := &models.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        strings.ToLower(user.Email),
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetByUsername gets a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByIDs gets the users with the given IDs; missing IDs are skipped
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.User, error) {
	if len(ids) == 0 {
		return []*entities.User{}, nil
	}
	var userModels []models.User
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Order("created_at ASC").Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(userModels))
	for i := range userModels {
		users = append(users, r.toEntity(&userModels[i]))
	}
	return users, nil
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         entities.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// isUniqueViolation catches duplicate-key errors from drivers that GORM does
// not translate without TranslateError.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
