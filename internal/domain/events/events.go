package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"visa-onboarding.backend/pkg/utils"
)

// Event types emitted by the onboarding and visa workflows
const (
	TypeInvitationIssued      = "invitation.issued"
	TypeApplicationSubmitted  = "onboarding.application_submitted"
	TypeApplicationApproved   = "onboarding.application_approved"
	TypeApplicationRejected   = "onboarding.application_rejected"
	TypeVisaDocumentUploaded  = "visa.document_uploaded"
	TypeVisaDocumentApproved  = "visa.document_approved"
	TypeVisaDocumentRejected  = "visa.document_rejected"
	TypeVisaNextStepAvailable = "visa.next_step_available"
	TypeVisaWorkflowCompleted = "visa.workflow_completed"
)

// Event is a notification intent. Delivery is the consumer's concern.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       string            `json:"type"`
	EmployeeID uuid.UUID         `json:"employeeId,omitempty"`
	ActorID    uuid.UUID         `json:"actorId,omitempty"`
	Recipient  string            `json:"recipient,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// New builds an event with a time-ordered id and the current timestamp.
func New(eventType string, employeeID, actorID uuid.UUID, payload map[string]string) Event {
	return Event{
		ID:         utils.NewTimeOrderedID(),
		Type:       eventType,
		EmployeeID: employeeID,
		ActorID:    actorID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher emits events fire-and-forget: implementations log failures
// instead of returning them.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}
