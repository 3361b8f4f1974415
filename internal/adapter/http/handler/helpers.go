package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/linkscribe/api-service/internal/usecase"
)

// ListQuery is the paging window of a history listing
type ListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// BindListQuery reads ?limit and ?offset. A missing or non-positive limit
// becomes usecase.DefaultListLimit, a limit above usecase.MaxListLimit is
// capped and a negative offset becomes 0. Non-numeric values are rejected
// with a 400.
func BindListQuery(c *gin.Context) (ListQuery, bool) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleInvalidRequest(c, "invalid paging parameters: limit and offset must be integers")
		return ListQuery{}, false
	}

	if q.Limit < 1 {
		q.Limit = usecase.DefaultListLimit
	}
	if q.Limit > usecase.MaxListLimit {
		q.Limit = usecase.MaxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q, true
}

// BindLinkID parses the :id path segment, writing a 400 when it is not a UUID.
func BindLinkID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		HandleInvalidRequest(c, "invalid link id")
		return uuid.Nil, false
	}
	return id, true
}

// BindURLInput decodes the JSON body of a page request. It writes a 400
// response and returns false when the body is not valid JSON.
func BindURLInput(c *gin.Context) (*usecase.URLInput, bool) {
	var input usecase.URLInput
	if err := c.ShouldBindJSON(&input); err != nil {
		HandleInvalidRequest(c, "invalid request body: "+err.Error())
		return nil, false
	}
	return &input, true
}
