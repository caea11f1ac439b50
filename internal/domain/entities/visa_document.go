package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
)

// DocumentType identifies one required document of the OPT visa workflow
type DocumentType string

const (
	DocumentOPTReceipt DocumentType = "OPT Receipt"
	DocumentOPTEAD     DocumentType = "OPT EAD"
	DocumentI983       DocumentType = "I-983"
	DocumentI20        DocumentType = "I-20"
)

// StepStatus is the review status of a visa document.
// StepStatusNone marks a step with no stored record.
type StepStatus string

const (
	StepStatusNone     StepStatus = ""
	StepStatusPending  StepStatus = "pending"
	StepStatusApproved StepStatus = "approved"
	StepStatusRejected StepStatus = "rejected"
)

// VisaStep is one row of the fixed workflow table.
type VisaStep struct {
	Index int          `json:"index"`
	Type  DocumentType `json:"type"`
	Key   string       `json:"key"`
	Label string       `json:"label"`
}

var visaSteps = [...]VisaStep{
	{Index: 0, Type: DocumentOPTReceipt, Key: "opt-receipt", Label: "OPT Receipt"},
	{Index: 1, Type: DocumentOPTEAD, Key: "opt-ead", Label: "OPT EAD"},
	{Index: 2, Type: DocumentI983, Key: "i983", Label: "I-983"},
	{Index: 3, Type: DocumentI20, Key: "i20", Label: "I-20"},
}

// VisaStepCount is the number of documents in the workflow
const VisaStepCount = len(visaSteps)

// VisaSteps returns the workflow table in order.
func VisaSteps() []VisaStep {
	out := make([]VisaStep, len(visaSteps))
	copy(out, visaSteps[:])
	return out
}

// VisaStepAt returns the step at index, or false when out of range.
func VisaStepAt(index int) (VisaStep, bool) {
	if index < 0 || index >= len(visaSteps) {
		return VisaStep{}, false
	}
	return visaSteps[index], true
}

// Step returns the table row for the type.
func (t DocumentType) Step() (VisaStep, bool) {
	for _, s := range visaSteps {
		if s.Type == t {
			return s, true
		}
	}
	return VisaStep{}, false
}

// Index returns the position of the type in the workflow, or -1.
func (t DocumentType) Index() int {
	if s, ok := t.Step(); ok {
		return s.Index
	}
	return -1
}

func (t DocumentType) Valid() bool {
	return t.Index() >= 0
}

// ParseClientDocumentKey maps the client-facing key (opt-receipt, opt-ead,
// i983, i20) to the canonical type. The match is exact.
func ParseClientDocumentKey(key string) (DocumentType, error) {
	for _, s := range visaSteps {
		if s.Key == key {
			return s.Type, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domainerrors.ErrUnknownDocumentType, key)
}

// ParseDocumentType accepts either the canonical value or the client key.
func ParseDocumentType(value string) (DocumentType, error) {
	if t := DocumentType(value); t.Valid() {
		return t, nil
	}
	return ParseClientDocumentKey(value)
}

// Valid reports whether s is one of the stored statuses.
func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusApproved, StepStatusRejected:
		return true
	}
	return false
}

// ReviewDecision is the outcome HR records for a document or application
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "approved"
	DecisionRejected ReviewDecision = "rejected"
)

// ParseReviewDecision validates a decision string.
func ParseReviewDecision(value string) (ReviewDecision, error) {
	switch d := ReviewDecision(strings.ToLower(strings.TrimSpace(value))); d {
	case DecisionApproved, DecisionRejected:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", domainerrors.ErrInvalidDecision, value)
}

// VisaDocument is the stored record of one workflow step for an employee
type VisaDocument struct {
	ID         uuid.UUID    `json:"id"`
	EmployeeID uuid.UUID    `json:"employeeId"`
	Type       DocumentType `json:"type"`
	FileRef    null.String  `json:"fileRef"`
	Status     StepStatus   `json:"status"`
	Feedback   null.String  `json:"feedback"`
	UploadedAt time.Time    `json:"uploadedAt"`
	ReviewedBy null.String  `json:"reviewedBy,omitempty"`
	ReviewedAt null.Time    `json:"reviewedAt,omitempty"`
	Version    int          `json:"version"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Reupload replaces the file in place and returns the step to review.
func (d *VisaDocument) Reupload(fileRef string, now time.Time) {
	d.FileRef = null.StringFrom(fileRef)
	d.Status = StepStatusPending
	d.Feedback = null.String{}
	d.UploadedAt = now
	d.ReviewedBy = null.String{}
	d.ReviewedAt = null.Time{}
}

// Review applies an HR decision to a pending step. Repeating the decision
// the step already carries is a no-op; any other transition out of approved
// or rejected needs a reupload first. changed reports whether d was modified.
func (d *VisaDocument) Review(decision ReviewDecision, feedback string, reviewer uuid.UUID, now time.Time) (changed bool, err error) {
	var target StepStatus
	switch decision {
	case DecisionApproved:
		target = StepStatusApproved
	case DecisionRejected:
		target = StepStatusRejected
		feedback = strings.TrimSpace(feedback)
		if feedback == "" {
			return false, domainerrors.ErrFeedbackRequired
		}
	default:
		return false, domainerrors.ErrInvalidDecision
	}

	switch d.Status {
	case StepStatusPending:
	case target:
		return false, nil
	default:
		return false, domainerrors.ErrStepNotReviewable
	}

	d.Status = target
	if target == StepStatusRejected {
		d.Feedback = null.StringFrom(feedback)
	} else {
		d.Feedback = null.String{}
	}
	d.ReviewedBy = null.StringFrom(reviewer.String())
	d.ReviewedAt = null.TimeFrom(now)
	return true, nil
}

// UploadVisaDocumentInput represents input for uploading a visa document
type UploadVisaDocumentInput struct {
	FileRef string `json:"fileRef"`
}

// ReviewInput represents an HR review decision
type ReviewInput struct {
	Decision string `json:"decision" binding:"required"`
	Feedback string `json:"feedback"`
}

// VisaWorkflowStep is one step of the workflow view
type VisaWorkflowStep struct {
	VisaStep
	Status         StepStatus  `json:"status"`
	ExplicitStatus StepStatus  `json:"explicitStatus"`
	FileRef        null.String `json:"fileRef"`
	Feedback       null.String `json:"feedback"`
	UploadedAt     null.Time   `json:"uploadedAt"`
	Available      bool        `json:"available"`
	BlockedReason  string      `json:"blockedReason,omitempty"`
}

// VisaWorkflow is the computed view of an employee's visa documents
type VisaWorkflow struct {
	EmployeeID        uuid.UUID          `json:"employeeId"`
	OnboardingStatus  OnboardingStatus   `json:"onboardingStatus"`
	Steps             []VisaWorkflowStep `json:"steps"`
	NextAvailableStep *DocumentType      `json:"nextAvailableStep"`
	Complete          bool               `json:"complete"`
}

// VisaWorkflowSummary is the HR list row for an in-progress workflow
type VisaWorkflowSummary struct {
	EmployeeID   uuid.UUID     `json:"employeeId"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	CurrentStep  *DocumentType `json:"currentStep"`
	CurrentState StepStatus    `json:"currentStatus"`
	NextAction   string        `json:"nextAction"`
}
