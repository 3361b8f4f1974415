package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkscribe/api-service/internal/domain/service"
	"github.com/linkscribe/api-service/internal/usecase"
)

// WelcomeMessage is returned by the root endpoint
const WelcomeMessage = "Welcome LinkScribe"

// Titles reported to legacy clients in place of a page title
const (
	legacyTitleNotFound  = "Title not found"
	legacyTitleFetchFail = "Error fetching the URL"
)

// LinkHandler handles page classification HTTP requests
type LinkHandler struct {
	linkUC usecase.LinkUsecase
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(linkUC usecase.LinkUsecase) *LinkHandler {
	return &LinkHandler{linkUC: linkUC}
}

// Root handles GET /
func (h *LinkHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": WelcomeMessage})
}

// Predict handles POST /api/v1/predict
func (h *LinkHandler) Predict(c *gin.Context) {
	input, ok := BindURLInput(c)
	if !ok {
		return
	}

	output, err := h.linkUC.Predict(c.Request.Context(), input)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// Title handles POST /api/v1/web-info/title
func (h *LinkHandler) Title(c *gin.Context) {
	input, ok := BindURLInput(c)
	if !ok {
		return
	}

	output, err := h.linkUC.Title(c.Request.Context(), input)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// Image handles POST /api/v1/web-info/image
func (h *LinkHandler) Image(c *gin.Context) {
	input, ok := BindURLInput(c)
	if !ok {
		return
	}

	png, err := h.linkUC.Preview(c.Request.Context(), input)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondFile(c, http.StatusOK, "image/png", "page_preview.png", png)
}

// Model handles GET /api/v1/model
func (h *LinkHandler) Model(c *gin.Context) {
	respondSuccess(c, http.StatusOK, h.linkUC.ModelInfo())
}

// ListLinks handles GET /api/v1/links
func (h *LinkHandler) ListLinks(c *gin.Context) {
	q, ok := BindListQuery(c)
	if !ok {
		return
	}

	output, err := h.linkUC.ListLinks(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// GetLink handles GET /api/v1/links/:id
func (h *LinkHandler) GetLink(c *gin.Context) {
	id, ok := BindLinkID(c)
	if !ok {
		return
	}

	output, err := h.linkUC.GetLink(c.Request.Context(), id)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// LabelStats handles GET /api/v1/links/stats
func (h *LinkHandler) LabelStats(c *gin.Context) {
	output, err := h.linkUC.LabelStats(c.Request.Context())
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, output)
}

// LegacyHello handles GET /LScribe-Model/hi
func (h *LinkHandler) LegacyHello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from the LinkScribe model router "})
}

// LegacyPredict handles POST /LScribe-Model/predict with the original
// unwrapped {prediction, webText} body.
func (h *LinkHandler) LegacyPredict(c *gin.Context) {
	input, ok := BindURLInput(c)
	if !ok {
		return
	}

	output, err := h.linkUC.Predict(c.Request.Context(), input)
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction": output.Prediction,
		"webText":    output.WebText,
	})
}

// LegacyTitle handles POST /webInfo/title with the original {Title} body
func (h *LinkHandler) LegacyTitle(c *gin.Context) {
	input, ok := BindURLInput(c)
	if !ok {
		return
	}

	output, err := h.linkUC.Title(c.Request.Context(), input)
	if errors.Is(err, service.ErrFetchFailed) || errors.Is(err, service.ErrExtractionFailed) {
		// Legacy clients only parse {"Title": ...}, so upstream failures stay 200.
		_ = c.Error(err)
		c.JSON(http.StatusOK, gin.H{"Title": legacyTitleFetchFail})
		return
	}
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	title := output.Title
	if !output.Found {
		title = legacyTitleNotFound
	}
	c.JSON(http.StatusOK, gin.H{"Title": title})
}
