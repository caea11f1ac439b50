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

// OnboardingRepository implements onboarding application data operations
type OnboardingRepository struct {
	db *gorm.DB
}

// NewOnboardingRepository creates a new onboarding repository
func NewOnboardingRepository(db *gorm.DB) *OnboardingRepository {
	return &OnboardingRepository{db: db}
}

// GetByEmployee returns the employee's application
func (r *OnboardingRepository) GetByEmployee(ctx context.Context, employeeID uuid.UUID) (*entities.OnboardingApplication, error) {
	var m models.OnboardingApplication
	if err := GetDB(ctx, r.db).Where("employee_id = ?", employeeID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Status returns the application status, never-submitted when absent
func (r *OnboardingRepository) Status(ctx context.Context, employeeID uuid.UUID) (entities.OnboardingStatus, error) {
	var statuses []string
	err := GetDB(ctx, r.db).
		Model(&models.OnboardingApplication{}).
		Where("employee_id = ?", employeeID).
		Limit(1).
		Pluck("status", &statuses).Error
	if err != nil {
		return "", err
	}
	if len(statuses) == 0 {
		return entities.OnboardingNeverSubmitted, nil
	}
	return entities.OnboardingStatus(statuses[0]), nil
}

// Save inserts a new application or performs a version-checked update
func (r *OnboardingRepository) Save(ctx context.Context, app *entities.OnboardingApplication) error {
	now := time.Now()
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
		app.Version = 1
		app.CreatedAt = now
		app.UpdatedAt = now
		if err := GetDB(ctx, r.db).Create(r.toModel(app)).Error; err != nil {
			app.ID = uuid.Nil
			app.Version = 0
			if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		return nil
	}

	m := r.toModel(app)
	m.Version = app.Version + 1
	m.UpdatedAt = now
	result := GetDB(ctx, r.db).
		Model(&models.OnboardingApplication{}).
		Where("id = ? AND version = ?", app.ID, app.Version).
		Select("*").
		Omit("id", "employee_id", "created_at").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	app.Version++
	app.UpdatedAt = now
	return nil
}

// ListByStatus returns applications in a status, oldest submission first.
// An empty status lists every application.
func (r *OnboardingRepository) ListByStatus(ctx context.Context, status entities.OnboardingStatus, limit, offset int) ([]*entities.OnboardingApplication, int64, error) {
	scoped := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.OnboardingApplication{})
		if status != "" {
			q = q.Where("status = ?", string(status))
		}
		return q
	}

	var totalCount int64
	if err := scoped().Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.OnboardingApplication
	if err := scoped().Order("submitted_at ASC").Limit(limit).Offset(offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	apps := make([]*entities.OnboardingApplication, 0, len(ms))
	for i := range ms {
		apps = append(apps, r.toEntity(&ms[i]))
	}
	return apps, totalCount, nil
}

// StatusesByEmployees returns the stored status per employee; absent
// employees are left out of the map
func (r *OnboardingRepository) StatusesByEmployees(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID]entities.OnboardingStatus, error) {
	out := make(map[uuid.UUID]entities.OnboardingStatus, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		EmployeeID uuid.UUID
		Status     string
	}
	err := GetDB(ctx, r.db).
		Model(&models.OnboardingApplication{}).
		Select("employee_id, status").
		Where("employee_id IN ?", employeeIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EmployeeID] = entities.OnboardingStatus(row.Status)
	}
	return out, nil
}

func (r *OnboardingRepository) toModel(a *entities.OnboardingApplication) *models.OnboardingApplication {
	contacts := make([]models.EmergencyContact, 0, len(a.EmergencyContacts))
	for _, c := range a.EmergencyContacts {
		contacts = append(contacts, models.EmergencyContact(c))
	}
	return &models.OnboardingApplication{
		ID:                     a.ID,
		EmployeeID:             a.EmployeeID,
		Status:                 string(a.Status),
		Feedback:               a.Feedback.Ptr(),
		FirstName:              a.FirstName,
		LastName:               a.LastName,
		MiddleName:             a.MiddleName.Ptr(),
		PreferredName:          a.PreferredName.Ptr(),
		Phone:                  a.Phone,
		WorkPhone:              a.WorkPhone.Ptr(),
		AddressBuilding:        a.Address.Building,
		AddressStreet:          a.Address.Street,
		AddressCity:            a.Address.City,
		AddressState:           a.Address.State,
		AddressZip:             a.Address.Zip,
		DateOfBirth:            a.DateOfBirth,
		Gender:                 a.Gender,
		Citizenship:            string(a.Citizenship),
		WorkAuthorization:      a.WorkAuthorization.Ptr(),
		WorkAuthorizationTitle: a.WorkAuthorizationTitle.Ptr(),
		AuthorizationStart:     a.AuthorizationStart.Ptr(),
		AuthorizationEnd:       a.AuthorizationEnd.Ptr(),
		ProfilePictureRef:      a.ProfilePictureRef.Ptr(),
		DriverLicenseRef:       a.DriverLicenseRef.Ptr(),
		WorkAuthorizationRef:   a.WorkAuthorizationRef.Ptr(),
		EmergencyContacts:      contacts,
		SubmittedAt:            a.SubmittedAt.Ptr(),
		ReviewedAt:             a.ReviewedAt.Ptr(),
		ReviewedBy:             a.ReviewedBy.Ptr(),
		Version:                a.Version,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
}

func (r *OnboardingRepository) toEntity(m *models.OnboardingApplication) *entities.OnboardingApplication {
	contacts := make([]entities.EmergencyContact, 0, len(m.EmergencyContacts))
	for _, c := range m.EmergencyContacts {
		contacts = append(contacts, entities.EmergencyContact(c))
	}
	return &entities.OnboardingApplication{
		ID:            m.ID,
		EmployeeID:    m.EmployeeID,
		Status:        entities.OnboardingStatus(m.Status),
		Feedback:      null.StringFromPtr(m.Feedback),
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		MiddleName:    null.StringFromPtr(m.MiddleName),
		PreferredName: null.StringFromPtr(m.PreferredName),
		Phone:         m.Phone,
		WorkPhone:     null.StringFromPtr(m.WorkPhone),
		Address: entities.Address{
			Building: m.AddressBuilding,
			Street:   m.AddressStreet,
			City:     m.AddressCity,
			State:    m.AddressState,
			Zip:      m.AddressZip,
		},
		DateOfBirth:            m.DateOfBirth,
		Gender:                 m.Gender,
		Citizenship:            entities.Citizenship(m.Citizenship),
		WorkAuthorization:      null.StringFromPtr(m.WorkAuthorization),
		WorkAuthorizationTitle: null.StringFromPtr(m.WorkAuthorizationTitle),
		AuthorizationStart:     null.TimeFromPtr(m.AuthorizationStart),
		AuthorizationEnd:       null.TimeFromPtr(m.AuthorizationEnd),
		ProfilePictureRef:      null.StringFromPtr(m.ProfilePictureRef),
		DriverLicenseRef:       null.StringFromPtr(m.DriverLicenseRef),
		WorkAuthorizationRef:   null.StringFromPtr(m.WorkAuthorizationRef),
		EmergencyContacts:      contacts,
		SubmittedAt:            null.TimeFromPtr(m.SubmittedAt),
		ReviewedAt:             null.TimeFromPtr(m.ReviewedAt),
		ReviewedBy:             null.StringFromPtr(m.ReviewedBy),
		Version:                m.Version,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}
