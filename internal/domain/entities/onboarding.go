package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
)

// OnboardingStatus represents the state of an employee's onboarding application
type OnboardingStatus string

const (
	OnboardingNeverSubmitted OnboardingStatus = "never-submitted"
	OnboardingPending        OnboardingStatus = "pending"
	OnboardingApproved       OnboardingStatus = "approved"
	OnboardingRejected       OnboardingStatus = "rejected"
)

// Citizenship is the residency answer on the onboarding form
type Citizenship string

const (
	CitizenshipCitizen   Citizenship = "citizen"
	CitizenshipGreenCard Citizenship = "green-card"
	CitizenshipWorkVisa  Citizenship = "work-visa"
)

// WorkAuthorization is the visa title for work-visa holders
type WorkAuthorization string

const (
	WorkAuthH1B   WorkAuthorization = "H1-B"
	WorkAuthL2    WorkAuthorization = "L2"
	WorkAuthF1    WorkAuthorization = "F1(CPT/OPT)"
	WorkAuthH4    WorkAuthorization = "H4"
	WorkAuthOther WorkAuthorization = "other"
)

// Address is a mailing address
type Address struct {
	Building string `json:"building"`
	Street   string `json:"street" binding:"required"`
	City     string `json:"city" binding:"required"`
	State    string `json:"state" binding:"required"`
	Zip      string `json:"zip" binding:"required"`
}

// EmergencyContact is a person to reach in an emergency
type EmergencyContact struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	MiddleName   string `json:"middleName,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship" binding:"required"`
}

// OnboardingApplication is the employee's onboarding form and its review state
type OnboardingApplication struct {
	ID                     uuid.UUID          `json:"id"`
	EmployeeID             uuid.UUID          `json:"employeeId"`
	Status                 OnboardingStatus   `json:"status"`
	Feedback               null.String        `json:"feedback"`
	FirstName              string             `json:"firstName"`
	LastName               string             `json:"lastName"`
	MiddleName             null.String        `json:"middleName"`
	PreferredName          null.String        `json:"preferredName"`
	Phone                  string             `json:"phone"`
	WorkPhone              null.String        `json:"workPhone"`
	Address                Address            `json:"address"`
	DateOfBirth            time.Time          `json:"dateOfBirth"`
	Gender                 string             `json:"gender"`
	Citizenship            Citizenship        `json:"citizenship"`
	WorkAuthorization      null.String        `json:"workAuthorization"`
	WorkAuthorizationTitle null.String        `json:"workAuthorizationTitle"`
	AuthorizationStart     null.Time          `json:"authorizationStart"`
	AuthorizationEnd       null.Time          `json:"authorizationEnd"`
	ProfilePictureRef      null.String        `json:"profilePictureRef"`
	DriverLicenseRef       null.String        `json:"driverLicenseRef"`
	WorkAuthorizationRef   null.String        `json:"workAuthorizationRef"`
	EmergencyContacts      []EmergencyContact `json:"emergencyContacts"`
	SubmittedAt            null.Time          `json:"submittedAt"`
	ReviewedAt             null.Time          `json:"reviewedAt"`
	ReviewedBy             null.String        `json:"reviewedBy,omitempty"`
	Version                int                `json:"version"`
	CreatedAt              time.Time          `json:"createdAt"`
	UpdatedAt              time.Time          `json:"updatedAt"`
}

// CanSubmit reports whether the employee may (re)submit the form.
func (s OnboardingStatus) CanSubmit() bool {
	return s == OnboardingNeverSubmitted || s == OnboardingRejected
}

// IsOPT reports whether the applicant is on F1 OPT and must follow the visa workflow.
func (a *OnboardingApplication) IsOPT() bool {
	return a.Citizenship == CitizenshipWorkVisa && a.WorkAuthorization.Valid && WorkAuthorization(a.WorkAuthorization.String) == WorkAuthF1
}

// Review applies an HR decision to a pending application.
func (a *OnboardingApplication) Review(decision ReviewDecision, feedback string, reviewer uuid.UUID, now time.Time) error {
	if a.Status != OnboardingPending {
		return domainerrors.ErrApplicationNotPending
	}
	switch decision {
	case DecisionApproved:
		a.Status = OnboardingApproved
		a.Feedback = null.String{}
	case DecisionRejected:
		feedback = strings.TrimSpace(feedback)
		if feedback == "" {
			return domainerrors.ErrFeedbackRequired
		}
		a.Status = OnboardingRejected
		a.Feedback = null.StringFrom(feedback)
	default:
		return domainerrors.ErrInvalidDecision
	}
	a.ReviewedBy = null.StringFrom(reviewer.String())
	a.ReviewedAt = null.TimeFrom(now)
	return nil
}

// SubmitApplicationInput represents the onboarding form submission
type SubmitApplicationInput struct {
	FirstName              string             `json:"firstName" binding:"required,max=100"`
	LastName               string             `json:"lastName" binding:"required,max=100"`
	MiddleName             string             `json:"middleName" binding:"max=100"`
	PreferredName          string             `json:"preferredName" binding:"max=100"`
	Phone                  string             `json:"phone" binding:"required"`
	WorkPhone              string             `json:"workPhone"`
	Address                Address            `json:"address" binding:"required"`
	DateOfBirth            time.Time          `json:"dateOfBirth" binding:"required"`
	Gender                 string             `json:"gender" binding:"required,oneof=male female other"`
	Citizenship            Citizenship        `json:"citizenship" binding:"required,oneof=citizen green-card work-visa"`
	WorkAuthorization      WorkAuthorization  `json:"workAuthorization"`
	WorkAuthorizationTitle string             `json:"workAuthorizationTitle"`
	AuthorizationStart     *time.Time         `json:"authorizationStart"`
	AuthorizationEnd       *time.Time         `json:"authorizationEnd"`
	ProfilePictureRef      string             `json:"profilePictureRef"`
	DriverLicenseRef       string             `json:"driverLicenseRef"`
	WorkAuthorizationRef   string             `json:"workAuthorizationRef"`
	EmergencyContacts      []EmergencyContact `json:"emergencyContacts" binding:"required,min=1,dive"`
}

// Validate checks the cross-field rules binding tags cannot express.
func (in *SubmitApplicationInput) Validate() error {
	if in.Citizenship != CitizenshipWorkVisa {
		return nil
	}
	switch in.WorkAuthorization {
	case WorkAuthH1B, WorkAuthL2, WorkAuthF1, WorkAuthH4:
	case WorkAuthOther:
		if strings.TrimSpace(in.WorkAuthorizationTitle) == "" {
			return domainerrors.NewError("workAuthorizationTitle is required for other work authorization", domainerrors.ErrInvalidInput)
		}
	default:
		return domainerrors.NewError("workAuthorization is required for work-visa holders", domainerrors.ErrInvalidInput)
	}
	if in.AuthorizationStart == nil || in.AuthorizationEnd == nil {
		return domainerrors.NewError("authorization start and end dates are required", domainerrors.ErrInvalidInput)
	}
	if !in.AuthorizationEnd.After(*in.AuthorizationStart) {
		return domainerrors.NewError("authorization end must be after start", domainerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(in.WorkAuthorizationRef) == "" {
		return domainerrors.NewError("work authorization document is required", domainerrors.ErrInvalidInput)
	}
	return nil
}

// OnboardingView is the employee-facing application state. Application is
// nil while the status is never-submitted.
type OnboardingView struct {
	Status      OnboardingStatus       `json:"status"`
	Feedback    null.String            `json:"feedback"`
	Application *OnboardingApplication `json:"application"`
}
