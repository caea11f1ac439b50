package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// InvitationStatus represents the lifecycle of a registration invitation
type InvitationStatus string

const (
	InvitationUnused  InvitationStatus = "UNUSED"
	InvitationUsed    InvitationStatus = "USED"
	InvitationExpired InvitationStatus = "EXPIRED"
)

// RegistrationInvitation is a time-limited registration token issued by HR
type RegistrationInvitation struct {
	ID        uuid.UUID        `json:"id"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Token     string           `json:"token,omitempty"`
	Status    InvitationStatus `json:"status"`
	ExpiresAt time.Time        `json:"expiresAt"`
	CreatedBy uuid.UUID        `json:"createdBy"`
	UsedAt    null.Time        `json:"usedAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Usable reports whether the invitation can still be redeemed at now.
func (i *RegistrationInvitation) Usable(now time.Time) bool {
	return i.Status == InvitationUnused && now.Before(i.ExpiresAt)
}

// CreateInvitationInput represents input for issuing an invitation
type CreateInvitationInput struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=2,max=100"`
}
