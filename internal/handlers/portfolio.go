package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codexx/academy/backend/internal/services"
	"github.com/codexx/academy/backend/internal/views"
	"github.com/codexx/academy/backend/pkg/response"
)

type PortfolioHandler struct {
	portfolios *services.PortfolioService
	visitors   *services.VisitorService
}

func NewPortfolioHandler(db *gorm.DB, portfolios *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolios: portfolios,
		visitors:   services.NewVisitorService(db),
	}
}

// GetPortfolio returns the public portfolio view for a username.
// Admin accounts never get a public page: they are redirected home.
// GET /portfolio/:username
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	username := c.Param("username")

	global := h.portfolios.Global()
	entry := global.FindUser(username)
	if entry == nil && username != "admin" {
		response.NotFound(c, "portfolio not found")
		return
	}

	isAdmin := username == "admin" || (entry != nil && entry.Role == "admin")
	if isAdmin {
		c.Redirect(http.StatusFound, "/")
		return
	}

	data := h.portfolios.Load(username)
	data.Username = username
	if entry != nil {
		data.IsVerified = entry.IsVerified
	}

	h.visitors.Track(username, c.ClientIP())

	response.Success(c, gin.H{
		"data":          data,
		"is_public":     true,
		"current_theme": data.Theme(),
	})
}

// GetProject returns one project of a portfolio. Legacy documents may
// store string ids, so the id is matched on its string form.
// GET /portfolio/:username/projects/:id
func (h *PortfolioHandler) GetProject(c *gin.Context) {
	username := c.Param("username")
	id := c.Param("id")

	data := h.portfolios.Load(username)
	project := data.FindProject(id)
	if project == nil {
		response.NotFound(c, "project not found")
		return
	}

	response.Success(c, gin.H{
		"project":       project,
		"current_theme": data.Theme(),
	})
}

// GetGlobal returns the landing view: sanitized users plus one summary
// per workspace.
// GET /api/portfolio
func (h *PortfolioHandler) GetGlobal(c *gin.Context) {
	response.Success(c, h.portfolios.Global())
}

// SaveProfile persists portfolio-level fields and the replaced skill set.
// PUT /api/portfolio/:username
func (h *PortfolioHandler) SaveProfile(c *gin.Context) {
	username := c.Param("username")

	var data views.Portfolio
	if err := c.ShouldBindJSON(&data); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	autoBackup := c.DefaultQuery("auto_backup", "true") != "false"

	if err := h.portfolios.Save(username, &data, autoBackup); err != nil {
		if errors.Is(err, services.ErrUsernameRequired) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "failed to save portfolio data")
		return
	}

	response.Success(c, gin.H{"message": "portfolio saved"})
}
