package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"reservation-engine/internal/handler/httperr"
	"reservation-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders errors pushed with c.Error when the handler did not
// write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		// Search backward through the error stack
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if resp, ok := err.Meta.(httperr.Response); ok && err.IsType(gin.ErrorTypePublic) {
				c.JSON(resp.Status, resp)
				return
			}
		}

		last := c.Errors.Last().Err
		status := http.StatusInternalServerError
		if errs.Is(last, errs.ErrTransient) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, httperr.New(c, status, errs.UserMessage(last), nil))
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("recovered from panic",
					"error", rec,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					httperr.New(c, http.StatusInternalServerError, "Internal server error", nil))
			}
		}()
		c.Next()
	}
}
