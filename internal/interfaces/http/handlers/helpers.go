package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/interfaces/http/middleware"
	"visa-onboarding.backend/internal/interfaces/http/response"
	"visa-onboarding.backend/pkg/utils"
)

// currentUser returns the authenticated user's id or writes a 401
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok || id == uuid.Nil {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return uuid.Nil, false
	}
	return id, true
}

// uuidParam parses a path parameter or writes a 400
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) utils.PaginationParams {
	var p utils.PaginationParams
	_ = c.ShouldBindQuery(&p)
	return utils.GetPaginationParams(p.Page, p.Limit)
}
