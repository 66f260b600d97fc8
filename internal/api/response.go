package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/middleware"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Details []core.FieldError `json:"details,omitempty"`
}

// SuccessResponse is the body of every successful request.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const internalErrorMessage = "Internal server error"

func init() {
	// Report binding failures by JSON field name.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: message})
}

// listOf keeps empty results rendering as [] rather than null.
func listOf[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func respondFailure(c *gin.Context, code int, message string, details []core.FieldError) {
	c.AbortWithStatusJSON(code, ErrorResponse{Status: "error", Message: message, Details: details})
}

// sentinel messages are shown with an upper-case first letter.
func sentinelMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

var (
	notFoundErrors = []error{
		core.ErrPlannerNotFound, core.ErrSectionNotFound, core.ErrShareNotFound,
		core.ErrActivityNotFound, core.ErrExportNotFound, core.ErrHandwritingNotFound,
		core.ErrUserNotFound,
	}
	badRequestErrors = []error{
		core.ErrAlreadyShared, core.ErrCannotShareWithSelf, core.ErrEmailInUse, core.ErrExportNotReady,
	}
)

// respondError maps a service error to its status code and envelope.
// Unknown errors are attached to the gin context so the request logger
// reports them, and the client only sees a generic message.
func respondError(c *gin.Context, err error) {
	var verr *core.ValidationError
	var bindErrs validator.ValidationErrors
	var unavailable *core.UnavailableError

	switch {
	case errors.As(err, &bindErrs):
		respondFailure(c, http.StatusBadRequest, "Validation failed", fieldErrors(bindErrs))
	case errors.As(err, &verr):
		respondFailure(c, http.StatusBadRequest, verr.Message, verr.Details)
	case errors.Is(err, core.ErrForbiddenAccess):
		respondFailure(c, http.StatusForbidden, "Access denied", nil)
	case errors.Is(err, core.ErrInvalidCredentials):
		respondFailure(c, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, core.ErrInvalidToken):
		respondFailure(c, http.StatusUnauthorized, "Invalid refresh token", nil)
	case errors.As(err, &unavailable):
		_ = c.Error(err)
		respondFailure(c, http.StatusInternalServerError, unavailable.Error(), nil)
	default:
		for _, target := range notFoundErrors {
			if errors.Is(err, target) {
				respondFailure(c, http.StatusNotFound, sentinelMessage(target), nil)
				return
			}
		}
		for _, target := range badRequestErrors {
			if errors.Is(err, target) {
				respondFailure(c, http.StatusBadRequest, sentinelMessage(target), nil)
				return
			}
		}
		_ = c.Error(err)
		respondFailure(c, http.StatusInternalServerError, internalErrorMessage, nil)
	}
}

func fieldErrors(errs validator.ValidationErrors) []core.FieldError {
	out := make([]core.FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, core.FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "url":
		return "must be a valid URL"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

// bindJSON decodes the body into req, answering 400 itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var bindErrs validator.ValidationErrors
		if errors.As(err, &bindErrs) {
			respondError(c, err)
			return false
		}
		respondFailure(c, http.StatusBadRequest, "Invalid request payload", []core.FieldError{{Field: "body", Message: err.Error()}})
		return false
	}
	return true
}

// currentUser returns the authenticated caller's id.
func currentUser(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.ContextUserID)
	if uid == "" {
		respondFailure(c, http.StatusUnauthorized, "Authentication required", nil)
		return "", false
	}
	return uid, true
}
