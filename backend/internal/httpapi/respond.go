package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tsunagu/backend/pkg/apperrors"
	"tsunagu/backend/pkg/logger"
)

// Every endpoint answers with the same envelope:
// {"success": true, "data": ...} or
// {"success": false, "error": {"code": ..., "message": ...}}

type errorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// respondError converts any error into the envelope. Uncategorized
// errors (raw store failures included) become opaque internal errors;
// the cause is logged, never returned to the caller.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Get().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(appErr.Status, gin.H{
		"success": false,
		"error":   errorBody{Code: appErr.Code, Message: appErr.Message},
	})
}

func abortError(c *gin.Context, err error) {
	respondError(c, err)
	c.Abort()
}
