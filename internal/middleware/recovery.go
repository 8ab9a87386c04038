// Package middleware provides gin middleware shared by the HTTP router.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"reportdesk/internal/observability"
	contextutils "reportdesk/internal/utils"
)

// Recovery returns middleware that converts panics into structured 500
// responses. The panic and its stack trace go through the observability
// logger instead of gin's default writer.
func Recovery(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())

				var cause error
				if e, ok := r.(error); ok {
					cause = e
				} else {
					cause = contextutils.ErrorWithContextf("panic: %v", r)
				}

				if logger != nil {
					logger.Error(c.Request.Context(), "Panic recovered", cause, map[string]interface{}{
						"http.method": c.Request.Method,
						"http.path":   c.Request.URL.Path,
						"stack":       stack,
					})
				}

				appErr := contextutils.NewAppErrorWithCause(
					contextutils.ErrorCodeInternalError,
					contextutils.SeverityFatal,
					"Internal server error",
					"A panic occurred while processing the request",
					cause,
				)

				// Stack traces only leave the process in debug mode
				if gin.Mode() == gin.DebugMode {
					appErr.Details = appErr.Details + "\n" + stack
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, appErr.ToJSON())
			}
		}()

		c.Next()
	}
}
