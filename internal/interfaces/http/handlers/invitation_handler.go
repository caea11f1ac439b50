package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/interfaces/http/response"
)

type invitationService interface {
	Create(ctx context.Context, hrID uuid.UUID, input *entities.CreateInvitationInput) (*entities.RegistrationInvitation, error)
	Validate(ctx context.Context, token string) (*entities.RegistrationInvitation, error)
	List(ctx context.Context, limit, offset int) ([]*entities.RegistrationInvitation, int64, error)
}

// InvitationHandler handles registration invitations
type InvitationHandler struct {
	invitations invitationService
}

func NewInvitationHandler(invitations invitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// Validate checks a registration token for the sign-up form
// GET /api/v1/invitations/:token
func (h *InvitationHandler) Validate(c *gin.Context) {
	inv, err := h.invitations.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email":     inv.Email,
		"name":      inv.Name,
		"expiresAt": inv.ExpiresAt,
	})
}

// Create issues an invitation
// POST /api/v1/hr/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	hrID, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.CreateInvitationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	inv, err := h.invitations.Create(c.Request.Context(), hrID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, inv)
}

// List returns issued invitations, newest first
// GET /api/v1/hr/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	p := pagination(c)
	items, total, err := h.invitations.List(c.Request.Context(), p.Limit, p.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}
	for _, inv := range items {
		inv.Token = ""
	}
	response.Paginated(c, http.StatusOK, items, p.Meta(total))
}
