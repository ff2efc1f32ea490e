package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/codexx/academy/backend/internal/services"
	"github.com/codexx/academy/backend/pkg/response"
)

type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit accepts the public contact form. Rejections carry a redirect
// back to the page the visitor came from, mirroring the old flash-and-
// redirect flow.
// POST /contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		response.FailWithRedirect(c, 400, "Required fields missing.", referrerOrRoot(c))
		return
	}

	result, err := h.contacts.Submit(&req, c.ClientIP())
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			response.FailWithRedirect(c, appErr.HTTPStatus, appErr.Message, referrerOrRoot(c))
			return
		}
		response.FailWithRedirect(c, 500, "Error sending message. Please try again.", referrerOrRoot(c))
		return
	}

	// Deflected (honeypot) submissions get the same success payload so
	// automated senders learn nothing.
	payload := gin.H{
		"message":  "Message sent successfully! We will get back to you soon.",
		"redirect": referrerOrRoot(c),
	}
	if !result.Deflected {
		payload["reference"] = result.Reference
	}
	response.Success(c, payload)
}

func referrerOrRoot(c *gin.Context) string {
	if ref := c.Request.Referer(); ref != "" {
		return ref
	}
	return "/"
}
