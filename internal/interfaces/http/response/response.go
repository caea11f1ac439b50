package response

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/pkg/logger"
	"visa-onboarding.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a list page with its metadata
func Paginated(c *gin.Context, status int, items interface{}, meta utils.PaginationMeta) {
	c.JSON(status, gin.H{
		"items":      items,
		"pagination": meta,
	})
}

// Error sends an error response. Sentinel domain errors are mapped to their
// status and code; anything unrecognised is a 500.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	if appErr.Status >= 500 {
		logger.Error(c.Request.Context(), "request failed", zap.Error(err), zap.String("path", c.FullPath()))
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	})
}

// Abort sends an error response and stops the handler chain
func Abort(c *gin.Context, err error) {
	c.Abort()
	Error(c, err)
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
