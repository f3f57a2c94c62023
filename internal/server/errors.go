package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apikeydomain "github.com/insightpulse/scout/internal/apikey/domain"
	auditdomain "github.com/insightpulse/scout/internal/audit/domain"
	"github.com/insightpulse/scout/internal/authz"
	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	bronzedomain "github.com/insightpulse/scout/internal/bronze/domain"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	golddomain "github.com/insightpulse/scout/internal/gold/domain"
	landingdomain "github.com/insightpulse/scout/internal/landing/domain"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
	recodomain "github.com/insightpulse/scout/internal/recommendation/domain"
	"github.com/insightpulse/scout/internal/report"
	silverdomain "github.com/insightpulse/scout/internal/silver/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal_error")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: strings.ReplaceAll(code, "_", " "),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authz.ErrInvalidActor),
		isInvalidOrgError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, landingdomain.ErrInvalidSourcePath),
		errors.Is(err, golddomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, report.ErrInvalidDate):
		return true
	case isBrandValidationError(err),
		isProductValidationError(err),
		isDeviceValidationError(err),
		isAPIKeyValidationError(err):
		return true
	default:
		return false
	}
}

func isBrandValidationError(err error) bool {
	switch err {
	case branddomain.ErrInvalidName,
		branddomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidSKU,
		productdomain.ErrInvalidName,
		productdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isDeviceValidationError(err error) bool {
	switch err {
	case devicedomain.ErrInvalidDeviceID,
		devicedomain.ErrInvalidName,
		devicedomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isAPIKeyValidationError(err error) bool {
	switch err {
	case apikeydomain.ErrInvalidName,
		apikeydomain.ErrInvalidScope,
		apikeydomain.ErrInvalidKeyID:
		return true
	default:
		return false
	}
}

// isInvalidOrgError means the request reached a service without an org in
// context, which only happens when authentication was skipped or broken.
func isInvalidOrgError(err error) bool {
	switch {
	case errors.Is(err, landingdomain.ErrInvalidOrganization),
		errors.Is(err, golddomain.ErrInvalidOrganization),
		errors.Is(err, branddomain.ErrInvalidOrganization),
		errors.Is(err, productdomain.ErrInvalidOrganization),
		errors.Is(err, devicedomain.ErrInvalidOrganization),
		errors.Is(err, apikeydomain.ErrInvalidOrganization),
		errors.Is(err, auditdomain.ErrInvalidOrganization),
		errors.Is(err, bronzedomain.ErrInvalidOrganization),
		errors.Is(err, silverdomain.ErrInvalidOrganization),
		errors.Is(err, recodomain.ErrInvalidOrganization),
		errors.Is(err, report.ErrInvalidOrganization):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, branddomain.ErrDuplicateName),
		errors.Is(err, productdomain.ErrDuplicateSKU),
		errors.Is(err, devicedomain.ErrDuplicateDeviceID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, branddomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, devicedomain.ErrNotFound),
		errors.Is(err, apikeydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return "request"
}

// classifyErrorForLog buckets an error for the request log line.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "error", payload.Type
	}
	return "warn", payload.Type
}
