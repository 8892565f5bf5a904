package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message   string   `json:"message"`
	Errors    []string `json:"errors,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// MessageBody is used by routes that only confirm an action.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends a resource as the response body.
func JSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// Message sends {"message": msg}.
func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, MessageBody{Message: msg})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, details []string) {
	c.JSON(code, ErrorBody{
		Message:   message,
		Errors:    details,
		RequestID: RequestID(c),
	})
}

// RequestID returns the id assigned by the RequestID middleware, if any.
func RequestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string)
	return idStr
}
