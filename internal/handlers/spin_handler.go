package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/services"
)

// SpinHandler handles participant-facing HTTP requests
type SpinHandler struct {
	spinService services.SpinService
}

// NewSpinHandler creates a new SpinHandler
func NewSpinHandler(spinService services.SpinService) *SpinHandler {
	return &SpinHandler{
		spinService: spinService,
	}
}

// Spin handles POST /spin
func (h *SpinHandler) Spin(c *gin.Context) {
	var req models.SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.spinService.Spin(c.Request.Context(), req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetParticipant handles GET /participants/:phone
func (h *SpinHandler) GetParticipant(c *gin.Context) {
	result, err := h.spinService.GetParticipant(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
