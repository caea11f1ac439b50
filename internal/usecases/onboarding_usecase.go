package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/domain/events"
	"visa-onboarding.backend/internal/domain/repositories"
	"visa-onboarding.backend/internal/metrics"
	"visa-onboarding.backend/pkg/logger"
)

// OnboardingUsecase handles the onboarding application and its HR review
type OnboardingUsecase struct {
	appRepo   repositories.OnboardingRepository
	userRepo  repositories.UserRepository
	uow       repositories.UnitOfWork
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewOnboardingUsecase creates a new onboarding usecase
func NewOnboardingUsecase(
	appRepo repositories.OnboardingRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
	publisher events.Publisher,
	m *metrics.Metrics,
) *OnboardingUsecase {
	return &OnboardingUsecase{
		appRepo:   appRepo,
		userRepo:  userRepo,
		uow:       uow,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// Get returns the employee's application state. An employee who never
// submitted gets status never-submitted, not an error.
func (u *OnboardingUsecase) Get(ctx context.Context, employeeID uuid.UUID) (*entities.OnboardingView, error) {
	app, err := u.appRepo.GetByEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return &entities.OnboardingView{Status: entities.OnboardingNeverSubmitted}, nil
		}
		return nil, err
	}
	return &entities.OnboardingView{Status: app.Status, Feedback: app.Feedback, Application: app}, nil
}

// Submit stores a first submission or a resubmission after rejection
func (u *OnboardingUsecase) Submit(ctx context.Context, employeeID uuid.UUID, input *entities.SubmitApplicationInput) (*entities.OnboardingApplication, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var app *entities.OnboardingApplication
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		existing, err := u.appRepo.GetByEmployee(txCtx, employeeID)
		switch {
		case errors.Is(err, domainerrors.ErrNotFound):
			existing = &entities.OnboardingApplication{EmployeeID: employeeID}
		case err != nil:
			return err
		case !existing.Status.CanSubmit():
			return domainerrors.ErrApplicationLocked
		}

		applySubmission(existing, input, u.now())
		if err := u.appRepo.Save(txCtx, existing); err != nil {
			return err
		}
		app = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "onboarding application submitted", zap.String("employee_id", employeeID.String()))
	u.publisher.Publish(ctx, events.New(events.TypeApplicationSubmitted, employeeID, employeeID, map[string]string{
		"name": app.FirstName + " " + app.LastName,
	}))
	return app, nil
}

// GetForReview returns a submitted application for HR
func (u *OnboardingUsecase) GetForReview(ctx context.Context, employeeID uuid.UUID) (*entities.OnboardingApplication, error) {
	return u.appRepo.GetByEmployee(ctx, employeeID)
}

// Review applies an HR decision to a pending application
func (u *OnboardingUsecase) Review(ctx context.Context, reviewerID, employeeID uuid.UUID, input *entities.ReviewInput) (*entities.OnboardingApplication, error) {
	decision, err := entities.ParseReviewDecision(input.Decision)
	if err != nil {
		return nil, err
	}

	var app *entities.OnboardingApplication
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		current, err := u.appRepo.GetByEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		if err := current.Review(decision, input.Feedback, reviewerID, u.now()); err != nil {
			return err
		}
		if err := u.appRepo.Save(txCtx, current); err != nil {
			return err
		}
		app = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.ApplicationReviewed(string(decision))
	logger.Info(ctx, "onboarding application reviewed",
		zap.String("employee_id", employeeID.String()),
		zap.String("decision", string(decision)),
	)

	eventType := events.TypeApplicationApproved
	payload := map[string]string{}
	if decision == entities.DecisionRejected {
		eventType = events.TypeApplicationRejected
		payload["feedback"] = app.Feedback.String
	}
	ev := events.New(eventType, employeeID, reviewerID, payload)
	if user, err := u.userRepo.GetByID(ctx, employeeID); err == nil {
		ev.Recipient = user.Email
	}
	u.publisher.Publish(ctx, ev)
	return app, nil
}

// List returns applications for HR. An empty status lists all.
func (u *OnboardingUsecase) List(ctx context.Context, status string, limit, offset int) ([]*entities.OnboardingApplication, int64, error) {
	filter := entities.OnboardingStatus(strings.ToLower(strings.TrimSpace(status)))
	switch filter {
	case "", entities.OnboardingPending, entities.OnboardingApproved, entities.OnboardingRejected:
	default:
		return nil, 0, domainerrors.NewError("status must be pending, approved or rejected", domainerrors.ErrInvalidInput)
	}
	return u.appRepo.ListByStatus(ctx, filter, limit, offset)
}

func applySubmission(app *entities.OnboardingApplication, in *entities.SubmitApplicationInput, now time.Time) {
	app.Status = entities.OnboardingPending
	app.Feedback = null.String{}
	app.ReviewedAt = null.Time{}
	app.ReviewedBy = null.String{}
	app.SubmittedAt = null.TimeFrom(now)

	app.FirstName = strings.TrimSpace(in.FirstName)
	app.LastName = strings.TrimSpace(in.LastName)
	app.MiddleName = optionalString(in.MiddleName)
	app.PreferredName = optionalString(in.PreferredName)
	app.Phone = strings.TrimSpace(in.Phone)
	app.WorkPhone = optionalString(in.WorkPhone)
	app.Address = in.Address
	app.DateOfBirth = in.DateOfBirth
	app.Gender = in.Gender
	app.Citizenship = in.Citizenship
	app.ProfilePictureRef = optionalString(in.ProfilePictureRef)
	app.DriverLicenseRef = optionalString(in.DriverLicenseRef)
	app.EmergencyContacts = in.EmergencyContacts

	if in.Citizenship == entities.CitizenshipWorkVisa {
		app.WorkAuthorization = null.StringFrom(string(in.WorkAuthorization))
		app.WorkAuthorizationTitle = optionalString(in.WorkAuthorizationTitle)
		app.AuthorizationStart = null.TimeFromPtr(in.AuthorizationStart)
		app.AuthorizationEnd = null.TimeFromPtr(in.AuthorizationEnd)
		app.WorkAuthorizationRef = optionalString(in.WorkAuthorizationRef)
		return
	}
	app.WorkAuthorization = null.String{}
	app.WorkAuthorizationTitle = null.String{}
	app.AuthorizationStart = null.Time{}
	app.AuthorizationEnd = null.Time{}
	app.WorkAuthorizationRef = null.String{}
}

func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
