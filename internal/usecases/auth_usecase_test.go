package usecases_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/usecases"
	"visa-onboarding.backend/pkg/crypto"
	"visa-onboarding.backend/pkg/jwt"
)

type authDeps struct {
	users *MockUserRepository
	invs  *MockInvitationRepository
	jwt   *jwt.JWTService
}

func newAuthUsecaseForTest() (*usecases.AuthUsecase, *authDeps) {
	d := &authDeps{
		users: new(MockUserRepository),
		invs:  new(MockInvitationRepository),
		jwt:   jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour),
	}
	uow := new(MockUnitOfWork)
	uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	invitations := usecases.NewInvitationUsecase(d.invs, d.users, &recordingPublisher{}, nil, 3*time.Hour, "")
	return usecases.NewAuthUsecase(d.users, d.invs, invitations, uow, d.jwt), d
}

func openInvitation(email string) *entities.RegistrationInvitation {
	return &entities.RegistrationInvitation{
		ID:        uuid.New(),
		Email:     email,
		Name:      "Grace Hopper",
		Token:     "tok",
		Status:    entities.InvitationUnused,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	uc, d := newAuthUsecaseForTest()
	inv := openInvitation("grace@corp.test")
	createdID := uuid.New()

	d.invs.On("GetByToken", mock.Anything, "tok").Return(inv, nil).Once()
	d.users.On("GetByUsername", mock.Anything, "grace").Return(nil, domainerrors.ErrNotFound).Once()
	d.users.On("GetByEmail", mock.Anything, "grace@corp.test").Return(nil, domainerrors.ErrNotFound).Once()
	d.users.On("Create", mock.Anything, mock.AnythingOfType("*entities.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.User).ID = createdID
	}).Once()
	d.invs.On("MarkUsed", mock.Anything, inv.ID).Return(nil).Once()

	user, err := uc.Register(context.Background(), &entities.RegisterInput{
		Token:    "tok",
		Username: "grace",
		Email:    "Grace@Corp.test",
		Password: "Password123",
	})
	require.NoError(t, err)

	assert.Equal(t, createdID, user.ID)
	assert.Equal(t, entities.UserRoleEmployee, user.Role)
	assert.Equal(t, "Grace Hopper", user.Name)
	assert.Equal(t, "grace@corp.test", user.Email)
	assert.True(t, crypto.CheckPassword("Password123", user.PasswordHash))
	d.invs.AssertExpectations(t)
	d.users.AssertExpectations(t)
}

func TestAuthUsecase_Register_InvitationProblems(t *testing.T) {
	uc, d := newAuthUsecaseForTest()
	ctx := context.Background()

	d.invs.On("GetByToken", mock.Anything, "unknown").Return(nil, domainerrors.ErrNotFound).Once()
	_, err := uc.Register(ctx, &entities.RegisterInput{Token: "unknown", Email: "a@corp.test", Password: "Password123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvitationInvalid)

	expired := openInvitation("a@corp.test")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	d.invs.On("GetByToken", mock.Anything, "expired").Return(expired, nil).Once()
	_, err = uc.Register(ctx, &entities.RegisterInput{Token: "expired", Email: "a@corp.test", Password: "Password123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvitationExpired)

	used := openInvitation("a@corp.test")
	used.Status = entities.InvitationUsed
	d.invs.On("GetByToken", mock.Anything, "used").Return(used, nil).Once()
	_, err = uc.Register(ctx, &entities.RegisterInput{Token: "used", Email: "a@corp.test", Password: "Password123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvitationInvalid)

	d.invs.On("GetByToken", mock.Anything, "other").Return(openInvitation("a@corp.test"), nil).Once()
	_, err = uc.Register(ctx, &entities.RegisterInput{Token: "other", Email: "b@corp.test", Password: "Password123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvitationInvalid)

	d.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_WeakPasswordAndTakenUsername(t *testing.T) {
	uc, d := newAuthUsecaseForTest()
	ctx := context.Background()
	d.invs.On("GetByToken", mock.Anything, "tok").Return(openInvitation("a@corp.test"), nil)

	_, err := uc.Register(ctx, &entities.RegisterInput{Token: "tok", Username: "alan", Email: "a@corp.test", Password: "password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	d.users.On("GetByUsername", mock.Anything, "alan").Return(&entities.User{ID: uuid.New()}, nil).Once()
	_, err = uc.Register(ctx, &entities.RegisterInput{Token: "tok", Username: "alan", Email: "a@corp.test", Password: "Password123"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthUsecase_Login(t *testing.T) {
	uc, d := newAuthUsecaseForTest()
	hash, err := crypto.HashPassword("Password123")
	require.NoError(t, err)
	user := &entities.User{ID: uuid.New(), Username: "hr", Email: "hr@corp.test", PasswordHash: hash, Role: entities.UserRoleHR}

	d.users.On("GetByUsername", mock.Anything, "hr").Return(user, nil)
	d.users.On("GetByEmail", mock.Anything, "hr@corp.test").Return(user, nil)
	d.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, domainerrors.ErrNotFound)

	resp, err := uc.Login(context.Background(), &entities.LoginInput{Identifier: "hr", Password: "Password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	claims, err := d.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "HR", claims.Role)

	_, err = uc.Login(context.Background(), &entities.LoginInput{Identifier: "hr@corp.test", Password: "Password123"})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), &entities.LoginInput{Identifier: "hr", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = uc.Login(context.Background(), &entities.LoginInput{Identifier: "ghost", Password: "Password123"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthUsecase_RefreshToken(t *testing.T) {
	uc, d := newAuthUsecaseForTest()
	user := &entities.User{ID: uuid.New(), Email: "e@corp.test", Role: entities.UserRoleEmployee}
	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	pair, err := d.jwt.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	fresh, err := uc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	_, err = uc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = uc.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthUsecase_CreateHR(t *testing.T) {
	uc, d := newAuthUsecaseForTest()
	d.users.On("GetByUsername", mock.Anything, "boss").Return(nil, domainerrors.ErrNotFound).Once()
	d.users.On("GetByEmail", mock.Anything, "boss@corp.test").Return(nil, domainerrors.ErrNotFound).Once()
	d.users.On("Create", mock.Anything, mock.AnythingOfType("*entities.User")).Return(nil).Once()

	user, err := uc.CreateHR(context.Background(), "boss", "BOSS@corp.test", "The Boss", "Password123")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleHR, user.Role)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2"))
}
