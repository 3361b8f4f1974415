package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkscribe/api-service/internal/adapter/http/middleware"
)

// Response is the envelope of every JSON API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// newMeta stamps a response with the current time and the request id set by
// middleware.RequestID. Requests that bypass the middleware get a fresh id.
func newMeta(c *gin.Context) *MetaInfo {
	requestID := c.GetString(middleware.RequestIDKey)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &MetaInfo{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
		Meta:    newMeta(c),
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
		Meta: newMeta(c),
	})
}

// respondFile writes raw bytes, such as a rendered preview, with the request
// id echoed in a header since there is no JSON envelope to carry it.
func respondFile(c *gin.Context, status int, contentType, filename string, data []byte) {
	c.Header("X-Request-ID", newMeta(c).RequestID)
	if filename != "" {
		c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	}
	c.Data(status, contentType, data)
}
