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

type visaService interface {
	GetWorkflow(ctx context.Context, employeeID uuid.UUID) (*entities.VisaWorkflow, error)
	GetEmployeeWorkflow(ctx context.Context, employeeID uuid.UUID) (*entities.VisaWorkflow, error)
	UploadStep(ctx context.Context, employeeID uuid.UUID, clientKey, fileRef string) (*entities.VisaWorkflow, error)
	ReviewStep(ctx context.Context, reviewerID, employeeID uuid.UUID, rawType string, input *entities.ReviewInput) (*entities.VisaWorkflow, error)
	ListInProgress(ctx context.Context, limit, offset int) ([]*entities.VisaWorkflowSummary, int64, error)
}

// VisaHandler serves the OPT document workflow
type VisaHandler struct {
	visa visaService
}

func NewVisaHandler(visa visaService) *VisaHandler {
	return &VisaHandler{visa: visa}
}

// GetOwn returns the caller's workflow
// GET /api/v1/visa
func (h *VisaHandler) GetOwn(c *gin.Context) {
	employeeID, ok := currentUser(c)
	if !ok {
		return
	}
	wf, err := h.visa.GetWorkflow(c.Request.Context(), employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, wf)
}

// Upload stores a document for the step named by its client key
// PUT /api/v1/visa/:type
func (h *VisaHandler) Upload(c *gin.Context) {
	employeeID, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.UploadVisaDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	wf, err := h.visa.UploadStep(c.Request.Context(), employeeID, c.Param("type"), input.FileRef)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, wf)
}

// ListInProgress returns employees whose workflow is not complete
// GET /api/v1/hr/visa
func (h *VisaHandler) ListInProgress(c *gin.Context) {
	p := pagination(c)
	items, total, err := h.visa.ListInProgress(c.Request.Context(), p.Limit, p.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, p.Meta(total))
}

// GET /api/v1/hr/visa/:employeeId
func (h *VisaHandler) GetEmployee(c *gin.Context) {
	employeeID, ok := uuidParam(c, "employeeId")
	if !ok {
		return
	}
	wf, err := h.visa.GetEmployeeWorkflow(c.Request.Context(), employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, wf)
}

// Review applies an HR decision to one step
// PUT /api/v1/hr/visa/:employeeId/:type/review
func (h *VisaHandler) Review(c *gin.Context) {
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

	wf, err := h.visa.ReviewStep(c.Request.Context(), reviewerID, employeeID, c.Param("type"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, wf)
}
