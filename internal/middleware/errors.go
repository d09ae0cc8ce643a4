package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesapi/internal/domain/dto"
	"github.com/guttosm/tradesapi/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a JSON response when the
// handler did not write one itself. The status defaults to 500.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	last := c.Errors.Last()
	logger.L().Error().Err(last.Err).Str("path", c.Request.URL.Path).Msg("request error")

	if c.Writer.Written() {
		return
	}
	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	c.JSON(status, dto.NewErrorResponse(http.StatusText(status), last.Err))
}

// AbortWithError records err on the context and aborts with a dto.ErrorResponse.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
