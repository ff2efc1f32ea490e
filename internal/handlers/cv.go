package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codexx/academy/backend/internal/services"
	"github.com/codexx/academy/backend/pkg/logger"
	"github.com/codexx/academy/backend/pkg/response"
)

type CVHandler struct {
	portfolios *services.PortfolioService
	pdf        *services.PDFService
}

func NewCVHandler(portfolios *services.PortfolioService, pdf *services.PDFService) *CVHandler {
	return &CVHandler{portfolios: portfolios, pdf: pdf}
}

// ownerParam resolves the profile a CV request targets. The preview and
// download pages default to the primary profile when no owner is given.
func ownerParam(c *gin.Context) string {
	return c.DefaultQuery("username", "admin")
}

// Preview returns the CV page data together with renderer availability
// so the UI can hint whether the download button will work.
// GET /cv/preview
func (h *CVHandler) Preview(c *gin.Context) {
	username := ownerParam(c)
	data := h.portfolios.Load(username)

	response.Success(c, gin.H{
		"data":          data,
		"services":      data.ActiveServices(),
		"current_theme": data.Theme(),
		"pdf_methods":   h.pdf.Probe(),
	})
}

// Capabilities reports which PDF renderers are installed.
// GET /cv/capabilities
func (h *CVHandler) Capabilities(c *gin.Context) {
	response.Success(c, h.pdf.Probe())
}

// Download renders the CV as a PDF and streams it as an attachment.
// Renderer failures send the client back to the preview page with the
// actionable message.
// GET /cv/download
func (h *CVHandler) Download(c *gin.Context) {
	username := ownerParam(c)
	data := h.portfolios.Load(username)

	html, err := services.RenderCV(data, true)
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("CV template rendering failed")
		response.FailWithRedirect(c, http.StatusInternalServerError,
			"Error generating PDF. Please try again.", "/cv/preview")
		return
	}

	result, err := h.pdf.Render(c.Request.Context(), html, data.Name)
	if err != nil {
		var remErr *services.RemediationError
		var unavailErr *services.UnavailableError
		switch {
		case errors.As(err, &remErr):
			response.FailWithRedirect(c, http.StatusServiceUnavailable, remErr.Message, "/cv/preview")
		case errors.As(err, &unavailErr):
			response.FailWithRedirect(c, http.StatusServiceUnavailable, unavailErr.Message, "/cv/preview")
		default:
			logger.Error().Err(err).Str("username", username).Msg("PDF rendering failed")
			response.FailWithRedirect(c, http.StatusInternalServerError,
				fmt.Sprintf("Error generating PDF: %v", err), "/cv/preview")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}
