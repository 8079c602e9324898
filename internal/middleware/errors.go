package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/polypulse/internal/domain/dto"
	"github.com/guttosm/polypulse/internal/logger"
)

// ErrorHandler turns errors attached with c.Error() into a standardized
// 500 JSON response, unless a handler already wrote a response.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	last := c.Errors.Last()
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Err(last.Err).
		Msg("request error")

	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError stops the handler chain and writes an ErrorResponse with
// the given status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
