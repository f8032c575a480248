package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GeneralKey collects errors that are not attributable to a single input
// field, such as a missing or expired OTP during password reset. Clients
// are expected to restart the flow from forget-password when they see it.
const GeneralKey = "general"

// ErrorResponse is the envelope every failure shares:
//
//	{"errors": {"<field>": ["<message>", ...]}}
type ErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

// Field responds with a single field-scoped error message.
func Field(c *gin.Context, status int, field, message string) {
	c.JSON(status, ErrorResponse{
		Errors: map[string][]string{field: {message}},
	})
}

// General responds with a process-state error under the "general" key.
func General(c *gin.Context, status int, message string) {
	Field(c, status, GeneralKey, message)
}

// Fields responds with several field-scoped errors at once.
func Fields(c *gin.Context, status int, errs map[string][]string) {
	c.JSON(status, ErrorResponse{Errors: errs})
}

// BadRequestField is the common 400 single-field shortcut.
func BadRequestField(c *gin.Context, field, message string) {
	Field(c, http.StatusBadRequest, field, message)
}

// InternalError hides details of unexpected failures from the client.
func InternalError(c *gin.Context) {
	General(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}
