package usecases

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/domain/events"
	"visa-onboarding.backend/internal/domain/repositories"
	"visa-onboarding.backend/internal/metrics"
	"visa-onboarding.backend/pkg/crypto"
	"visa-onboarding.backend/pkg/logger"
)

var generateInvitationToken = crypto.GenerateInvitationToken

// InvitationUsecase issues and validates registration invitations
type InvitationUsecase struct {
	invRepo     repositories.InvitationRepository
	userRepo    repositories.UserRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	ttl         time.Duration
	registerURL string
	now         func() time.Time
}

// NewInvitationUsecase creates a new invitation usecase
func NewInvitationUsecase(
	invRepo repositories.InvitationRepository,
	userRepo repositories.UserRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	ttl time.Duration,
	registerURL string,
) *InvitationUsecase {
	return &InvitationUsecase{
		invRepo:     invRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		metrics:     m,
		ttl:         ttl,
		registerURL: registerURL,
		now:         time.Now,
	}
}

// Create issues an invitation for a new employee and emits the email intent
func (u *InvitationUsecase) Create(ctx context.Context, hrID uuid.UUID, input *entities.CreateInvitationInput) (*entities.RegistrationInvitation, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.Conflict("an account with this email already exists")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, err
	}

	now := u.now()
	inv := &entities.RegistrationInvitation{
		Email:     email,
		Name:      strings.TrimSpace(input.Name),
		Token:     token,
		Status:    entities.InvitationUnused,
		ExpiresAt: now.Add(u.ttl),
		CreatedBy: hrID,
		CreatedAt: now,
	}
	if err := u.invRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	u.metrics.InvitationIssued()
	logger.Info(ctx, "registration invitation issued", zap.String("invitation_id", inv.ID.String()))

	ev := events.New(events.TypeInvitationIssued, uuid.Nil, hrID, map[string]string{
		"name":      inv.Name,
		"link":      u.registrationLink(token),
		"expiresAt": inv.ExpiresAt.UTC().Format(time.RFC3339),
	})
	ev.Recipient = inv.Email
	u.publisher.Publish(ctx, ev)
	return inv, nil
}

// List returns invitations newest first
func (u *InvitationUsecase) List(ctx context.Context, limit, offset int) ([]*entities.RegistrationInvitation, int64, error) {
	return u.invRepo.List(ctx, limit, offset)
}

// Validate resolves a token that can still be redeemed
func (u *InvitationUsecase) Validate(ctx context.Context, token string) (*entities.RegistrationInvitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainerrors.ErrInvitationInvalid
	}
	inv, err := u.invRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvitationInvalid
		}
		return nil, err
	}

	switch {
	case inv.Status == entities.InvitationUsed:
		return nil, domainerrors.ErrInvitationInvalid
	case inv.Status == entities.InvitationExpired, !inv.Usable(u.now()):
		return nil, domainerrors.ErrInvitationExpired
	}
	return inv, nil
}

func (u *InvitationUsecase) registrationLink(token string) string {
	if u.registerURL == "" {
		return ""
	}
	link, err := url.Parse(u.registerURL)
	if err != nil {
		return u.registerURL + "?token=" + url.QueryEscape(token)
	}
	q := link.Query()
	q.Set("token", token)
	link.RawQuery = q.Encode()
	return link.String()
}
