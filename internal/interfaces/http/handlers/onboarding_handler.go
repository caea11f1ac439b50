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

type onboardingService interface {
	Get(ctx context.Context, employeeID uuid.UUID) (*entities.OnboardingView, error)
	Submit(ctx context.Context, employeeID uuid.UUID, input *entities.SubmitApplicationInput) (*entities.OnboardingApplication, error)
	GetForReview(ctx context.Context, employeeID uuid.UUID) (*entities.OnboardingApplication, error)
	Review(ctx context.Context, reviewerID, employeeID uuid.UUID, input *entities.ReviewInput) (*entities.OnboardingApplication, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entities.OnboardingApplication, int64, error)
}

// OnboardingHandler serves the onboarding application to employees and HR
type OnboardingHandler struct {
	onboarding onboardingService
}

func NewOnboardingHandler(onboarding onboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

// GET /api/v1/onboarding
func (h *OnboardingHandler) GetOwn(c *gin.Context) {
	employeeID, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := h.onboarding.Get(c.Request.Context(), employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// POST /api/v1/onboarding
func (h *OnboardingHandler) Submit(c *gin.Context) {
	employeeID, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.SubmitApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.onboarding.Submit(c.Request.Context(), employeeID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

// List returns applications filtered by status
// GET /api/v1/hr/applications?status=pending
func (h *OnboardingHandler) List(c *gin.Context) {
	p := pagination(c)
	items, total, err := h.onboarding.List(c.Request.Context(), c.Query("status"), p.Limit, p.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, p.Meta(total))
}

// GET /api/v1/hr/applications/:employeeId
func (h *OnboardingHandler) Get(c *gin.Context) {
	employeeID, ok := uuidParam(c, "employeeId")
	if !ok {
		return
	}
	app, err := h.onboarding.GetForReview(c.Request.Context(), employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

// PUT /api/v1/hr/applications/:employeeId/review
func (h *OnboardingHandler) Review(c *gin.Context) {
	reviewerID, ok := currentUser(c)
	if !ok {
		return
	}
	employeeID, ok := uuidParam(c, "employeeId")
	if !ok {
		return
	}
	var input entities.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	app, err := h.onboarding.Review(c.Request.Context(), reviewerID, employeeID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}
