package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/infrastructure/models"
)

// InvitationRepository implements registration invitation operations
type InvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create stores a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *entities.RegistrationInvitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	m := &models.RegistrationInvitation{
		ID:        inv.ID,
		Email:     strings.ToLower(inv.Email),
		Name:      inv.Name,
		Token:     inv.Token,
		Status:    string(inv.Status),
		ExpiresAt: inv.ExpiresAt,
		CreatedBy: inv.CreatedBy,
		CreatedAt: inv.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByToken gets an invitation by its token
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*entities.RegistrationInvitation, error) {
	var m models.RegistrationInvitation
	if err := GetDB(ctx, r.db).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toInvitationEntity(&m), nil
}

// MarkUsed consumes an unused invitation
func (r *InvitationRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).
		Model(&models.RegistrationInvitation{}).
		Where("id = ? AND status = ?", id, string(entities.InvitationUnused)).
		Updates(map[string]interface{}{
			"status":  string(entities.InvitationUsed),
			"used_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvitationInvalid
	}
	return nil
}

// List returns invitations newest first
func (r *InvitationRepository) List(ctx context.Context, limit, offset int) ([]*entities.RegistrationInvitation, int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.RegistrationInvitation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := GetDB(ctx, r.db).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var ms []models.RegistrationInvitation
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.RegistrationInvitation, 0, len(ms))
	for i := range ms {
		items = append(items, toInvitationEntity(&ms[i]))
	}
	return items, total, nil
}

// GetExpiredUnused returns unused invitations past their expiry
func (r *InvitationRepository) GetExpiredUnused(ctx context.Context, limit int) ([]*entities.RegistrationInvitation, error) {
	var ms []models.RegistrationInvitation
	err := GetDB(ctx, r.db).
		Where("status = ? AND expires_at <= ?", string(entities.InvitationUnused), time.Now()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	items := make([]*entities.RegistrationInvitation, 0, len(ms))
	for i := range ms {
		items = append(items, toInvitationEntity(&ms[i]))
	}
	return items, nil
}

// ExpireInvitations marks the given unused invitations expired
func (r *InvitationRepository) ExpireInvitations(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).
		Model(&models.RegistrationInvitation{}).
		Where("id IN ? AND status = ?", ids, string(entities.InvitationUnused)).
		Update("status", string(entities.InvitationExpired)).Error
}

func toInvitationEntity(m *models.RegistrationInvitation) *entities.RegistrationInvitation {
	return &entities.RegistrationInvitation{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Token:     m.Token,
		Status:    entities.InvitationStatus(m.Status),
		ExpiresAt: m.ExpiresAt,
		CreatedBy: m.CreatedBy,
		UsedAt:    null.TimeFromPtr(m.UsedAt),
		CreatedAt: m.CreatedAt,
	}
}
