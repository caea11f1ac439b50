package usecases

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/domain/repositories"
	"visa-onboarding.backend/pkg/crypto"
	"visa-onboarding.backend/pkg/jwt"
	"visa-onboarding.backend/pkg/logger"
)

var (
	hashPassword  = crypto.HashPassword
	checkPassword = crypto.CheckPassword
)

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	userRepo    repositories.UserRepository
	invRepo     repositories.InvitationRepository
	invitations *InvitationUsecase
	uow         repositories.UnitOfWork
	jwtService  *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	invRepo repositories.InvitationRepository,
	invitations *InvitationUsecase,
	uow repositories.UnitOfWork,
	jwtService *jwt.JWTService,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:    userRepo,
		invRepo:     invRepo,
		invitations: invitations,
		uow:         uow,
		jwtService:  jwtService,
	}
}

// Register creates an employee account by redeeming an invitation. The
// registrant's email must match the invited address.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error) {
	inv, err := u.invitations.Validate(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != strings.ToLower(inv.Email) {
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvitationInvalid, "email does not match the invitation", domainerrors.ErrInvitationInvalid)
	}
	if err := crypto.ValidatePassword(input.Password); err != nil {
		return nil, domainerrors.NewError(err.Error(), domainerrors.ErrInvalidInput)
	}

	username := strings.TrimSpace(input.Username)
	if err := u.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		Name:         inv.Name,
		PasswordHash: passwordHash,
		Role:         entities.UserRoleEmployee,
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		return u.invRepo.MarkUsed(txCtx, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "employee registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// CreateHR creates an HR account; used by the bootstrap command
func (u *AuthUsecase) CreateHR(ctx context.Context, username, email, name, password string) (*entities.User, error) {
	if err := crypto.ValidatePassword(password); err != nil {
		return nil, domainerrors.NewError(err.Error(), domainerrors.ErrInvalidInput)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if username == "" || email == "" {
		return nil, domainerrors.NewError("username and email are required", domainerrors.ErrInvalidInput)
	}
	if err := u.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		Username:     username,
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         entities.UserRoleHR,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by username or email and returns tokens
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	identifier := strings.TrimSpace(input.Identifier)

	var user *entities.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = u.userRepo.GetByEmail(ctx, identifier)
	} else {
		user, err = u.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &entities.AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
	}, nil
}

// RefreshToken issues a new pair from a valid refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

func (u *AuthUsecase) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := u.userRepo.GetByUsername(ctx, username); err == nil {
		return domainerrors.Conflict("username already taken")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}
	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return domainerrors.Conflict("email already registered")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}
	return nil
}
