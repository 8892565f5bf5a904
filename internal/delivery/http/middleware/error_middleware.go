package middleware

import (
	"errors"
	"net/http"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/logger"
	"job-tracker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindError marks a request body that failed gin binding.
type BindError struct {
	Err error
}

func (e *BindError) Error() string { return e.Err.Error() }
func (e *BindError) Unwrap() error { return e.Err }

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var bindErr *BindError
		if errors.As(err, &bindErr) {
			details := validation.FormatValidationErrors(bindErr.Err)
			message := "Invalid request body"
			var verrs validator.ValidationErrors
			if errors.As(bindErr.Err, &verrs) && len(details) > 0 {
				message = details[0]
			}
			response.Error(c, http.StatusBadRequest, message, details)
			return
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"request_id", response.RequestID(c),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			message := appErr.Message
			if appErr.Code == http.StatusInternalServerError {
				message = "An unexpected error occurred. Please try again later."
			}
			response.Error(c, appErr.Code, message, nil)
			return
		}

		// Never expose internal error details to clients.
		logger.Log.Error("unhandled error",
			"request_id", response.RequestID(c),
			"path", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
