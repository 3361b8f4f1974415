package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkscribe/api-service/internal/domain/service"
	"github.com/linkscribe/api-service/internal/usecase"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// Error codes returned in the response envelope
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeUpstreamError      = "UPSTREAM_ERROR"
	CodeExtractionFailed   = "EXTRACTION_FAILED"
	CodePreviewUnavailable = "PREVIEW_UNAVAILABLE"
	CodeModelUnavailable   = "MODEL_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// errorMappings is scanned in order; the first target matched by errors.Is wins.
// An empty message means the error text itself is shown to the caller.
var errorMappings = []struct {
	targets []error
	resp    ErrorResponse
}{
	{
		targets: []error{usecase.ErrInvalidRequest, service.ErrInvalidURL},
		resp:    ErrorResponse{http.StatusBadRequest, CodeInvalidRequest, "invalid request: a valid http or https url is required"},
	},
	{
		targets: []error{usecase.ErrLinkNotFound},
		resp:    ErrorResponse{http.StatusNotFound, CodeNotFound, "link not found"},
	},
	{
		targets: []error{usecase.ErrHistoryDisabled},
		resp:    ErrorResponse{http.StatusNotFound, CodeNotFound, "link history is disabled"},
	},
	{
		targets: []error{service.ErrFetchFailed},
		resp:    ErrorResponse{http.StatusBadGateway, CodeUpstreamError, "unable to reach the requested page"},
	},
	{
		targets: []error{service.ErrExtractionFailed},
		resp:    ErrorResponse{http.StatusUnprocessableEntity, CodeExtractionFailed, ""},
	},
	{
		targets: []error{service.ErrPreviewFailed},
		resp:    ErrorResponse{http.StatusBadGateway, CodeUpstreamError, "unable to render the requested page"},
	},
	{
		targets: []error{service.ErrPreviewDisabled},
		resp:    ErrorResponse{http.StatusServiceUnavailable, CodePreviewUnavailable, "page preview is disabled"},
	},
	{
		targets: []error{service.ErrClassifierUnavailable},
		resp:    ErrorResponse{http.StatusServiceUnavailable, CodeModelUnavailable, "classifier is not ready"},
	},
}

// MapUsecaseError maps usecase errors to HTTP error responses. Errors that
// match nothing, including an inconsistent model, are internal errors.
func MapUsecaseError(err error) ErrorResponse {
	for _, m := range errorMappings {
		for _, target := range m.targets {
			if !errors.Is(err, target) {
				continue
			}
			resp := m.resp
			if resp.Message == "" {
				resp.Message = err.Error()
			}
			return resp
		}
	}
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    "internal server error",
	}
}

// HandleUsecaseError records err on the gin context for the request logger
// and writes the mapped error envelope.
func HandleUsecaseError(c *gin.Context, err error) {
	errResp := MapUsecaseError(err)
	_ = c.Error(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandleInvalidRequest writes a 400 with message.
func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, CodeInvalidRequest, message)
}
