package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytmp3/internal/models"
	"github.com/denisAlshanov/ytmp3/internal/utils"
)

// errorResponse renders err as the JSON error body shared by every endpoint.
// Errors that are not AppErrors are logged and reported as INTERNAL_ERROR.
func errorResponse(c *gin.Context, err error) {
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		utils.LogError(c.Request.Context(), "Unhandled error", err)
		appErr = utils.NewInternalError()
	}

	c.JSON(appErr.StatusCode, models.ErrorResponse{
		Error:     appErr.Message,
		Code:      string(appErr.Code),
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
