package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/middleware"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/services"
)

// AdminHandler handles operator HTTP requests
type AdminHandler struct {
	adminService services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// IssueToken handles POST /admin/token
func (h *AdminHandler) IssueToken(c *gin.Context) {
	var req models.AdminTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.adminService.IssueToken(c.Request.Context(), req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResetInventory handles POST /admin/reset
func (h *AdminHandler) ResetInventory(c *gin.Context) {
	result, err := h.adminService.ResetInventory(c.Request.Context(), credential(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context(), credential(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": stats})
}

// credential returns the admin credential from headers or query, falling back to a
// {"key": "..."} JSON body
func credential(c *gin.Context) string {
	if cred := middleware.AdminCredential(c); cred != "" {
		return cred
	}
	var body struct {
		Key string `json:"key"`
	}
	if c.Request.ContentLength != 0 && c.ShouldBindJSON(&body) == nil {
		return body.Key
	}
	return ""
}
